// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

// Marshal serializes m into a length-delimited binary frame.
func (m Message) Marshal() []byte {
	w := &writer{}
	w.putString(m.Sender)
	w.putByte(byte(m.Type))
	w.putBytes(m.Data)
	w.putString(m.ObjectID)
	return w.buf
}

// UnmarshalMessage parses a frame produced by Message.Marshal.
func UnmarshalMessage(b []byte) (Message, error) {
	r := &reader{buf: b}
	sender, err := r.string()
	if err != nil {
		return Message{}, err
	}
	typByte, err := r.byteVal()
	if err != nil {
		return Message{}, err
	}
	data, err := r.bytes()
	if err != nil {
		return Message{}, err
	}
	objectID, err := r.string()
	if err != nil {
		return Message{}, err
	}
	return Message{Sender: sender, Type: MessageType(typByte), Data: data, ObjectID: objectID}, nil
}

func (wv WireVertex) marshalInto(w *writer) {
	w.putString(wv.Hash)
	w.putString(wv.PeerID)
	hasOp := byte(0)
	if wv.HasOperation {
		hasOp = 1
	}
	w.putByte(hasOp)
	w.putString(wv.DRPType)
	w.putString(wv.OpType)
	w.putBytes(wv.Value)
	w.putStrings(wv.Dependencies)
	w.putInt64(wv.Timestamp)
	w.putBytes(wv.Signature)
}

func unmarshalWireVertex(r *reader) (WireVertex, error) {
	var wv WireVertex
	var err error
	if wv.Hash, err = r.string(); err != nil {
		return wv, err
	}
	if wv.PeerID, err = r.string(); err != nil {
		return wv, err
	}
	hasOp, err := r.byteVal()
	if err != nil {
		return wv, err
	}
	wv.HasOperation = hasOp != 0
	if wv.DRPType, err = r.string(); err != nil {
		return wv, err
	}
	if wv.OpType, err = r.string(); err != nil {
		return wv, err
	}
	if wv.Value, err = r.bytes(); err != nil {
		return wv, err
	}
	if wv.Dependencies, err = r.strings(); err != nil {
		return wv, err
	}
	if wv.Timestamp, err = r.int64(); err != nil {
		return wv, err
	}
	if wv.Signature, err = r.bytes(); err != nil {
		return wv, err
	}
	return wv, nil
}

func marshalWireVertices(w *writer, vs []WireVertex) {
	w.putUint32(len(vs))
	for _, v := range vs {
		v.marshalInto(w)
	}
}

func unmarshalWireVertices(r *reader) ([]WireVertex, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	out := make([]WireVertex, 0, n)
	for i := 0; i < n; i++ {
		v, err := unmarshalWireVertex(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (a Attestation) marshalInto(w *writer) {
	w.putString(a.Data)
	w.putBytes(a.Signature)
}

func unmarshalAttestation(r *reader) (Attestation, error) {
	var a Attestation
	var err error
	if a.Data, err = r.string(); err != nil {
		return a, err
	}
	if a.Signature, err = r.bytes(); err != nil {
		return a, err
	}
	return a, nil
}

func marshalAttestations(w *writer, as []Attestation) {
	w.putUint32(len(as))
	for _, a := range as {
		a.marshalInto(w)
	}
}

func unmarshalAttestations(r *reader) ([]Attestation, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	out := make([]Attestation, 0, n)
	for i := 0; i < n; i++ {
		a, err := unmarshalAttestation(r)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (a AggregatedAttestation) marshalInto(w *writer) {
	w.putString(a.Data)
	w.putBytes(a.Signature)
	w.putBytes(a.SignerBitset)
}

func unmarshalAggregatedAttestation(r *reader) (AggregatedAttestation, error) {
	var a AggregatedAttestation
	var err error
	if a.Data, err = r.string(); err != nil {
		return a, err
	}
	if a.Signature, err = r.bytes(); err != nil {
		return a, err
	}
	if a.SignerBitset, err = r.bytes(); err != nil {
		return a, err
	}
	return a, nil
}

func marshalAggregatedAttestations(w *writer, as []AggregatedAttestation) {
	w.putUint32(len(as))
	for _, a := range as {
		a.marshalInto(w)
	}
}

func unmarshalAggregatedAttestations(r *reader) ([]AggregatedAttestation, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	out := make([]AggregatedAttestation, 0, n)
	for i := 0; i < n; i++ {
		a, err := unmarshalAggregatedAttestation(r)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (e StateEntry) marshalInto(w *writer) {
	w.putString(e.Key)
	w.putBytes(e.Data)
}

func unmarshalStateEntry(r *reader) (StateEntry, error) {
	var e StateEntry
	var err error
	if e.Key, err = r.string(); err != nil {
		return e, err
	}
	if e.Data, err = r.bytes(); err != nil {
		return e, err
	}
	return e, nil
}

func marshalStateEntries(w *writer, es []StateEntry) {
	w.putUint32(len(es))
	for _, e := range es {
		e.marshalInto(w)
	}
}

func unmarshalStateEntries(r *reader) ([]StateEntry, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	out := make([]StateEntry, 0, n)
	for i := 0; i < n; i++ {
		e, err := unmarshalStateEntry(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Marshal serializes a FetchStatePayload.
func (p FetchStatePayload) Marshal() []byte {
	w := &writer{}
	w.putString(p.VertexHash)
	return w.buf
}

// UnmarshalFetchStatePayload parses a FetchStatePayload frame.
func UnmarshalFetchStatePayload(b []byte) (FetchStatePayload, error) {
	r := &reader{buf: b}
	hash, err := r.string()
	if err != nil {
		return FetchStatePayload{}, err
	}
	return FetchStatePayload{VertexHash: hash}, nil
}

// Marshal serializes a FetchStateResponsePayload.
func (p FetchStateResponsePayload) Marshal() []byte {
	w := &writer{}
	w.putString(p.VertexHash)
	marshalStateEntries(w, p.ACLState)
	marshalStateEntries(w, p.DRPState)
	return w.buf
}

// UnmarshalFetchStateResponsePayload parses a FetchStateResponsePayload frame.
func UnmarshalFetchStateResponsePayload(b []byte) (FetchStateResponsePayload, error) {
	r := &reader{buf: b}
	hash, err := r.string()
	if err != nil {
		return FetchStateResponsePayload{}, err
	}
	acl, err := unmarshalStateEntries(r)
	if err != nil {
		return FetchStateResponsePayload{}, err
	}
	drp, err := unmarshalStateEntries(r)
	if err != nil {
		return FetchStateResponsePayload{}, err
	}
	return FetchStateResponsePayload{VertexHash: hash, ACLState: acl, DRPState: drp}, nil
}

// Marshal serializes an UpdatePayload.
func (p UpdatePayload) Marshal() []byte {
	w := &writer{}
	marshalWireVertices(w, p.Vertices)
	marshalAttestations(w, p.Attestations)
	return w.buf
}

// UnmarshalUpdatePayload parses an UpdatePayload frame.
func UnmarshalUpdatePayload(b []byte) (UpdatePayload, error) {
	r := &reader{buf: b}
	vs, err := unmarshalWireVertices(r)
	if err != nil {
		return UpdatePayload{}, err
	}
	atts, err := unmarshalAttestations(r)
	if err != nil {
		return UpdatePayload{}, err
	}
	return UpdatePayload{Vertices: vs, Attestations: atts}, nil
}

// Marshal serializes a SyncPayload.
func (p SyncPayload) Marshal() []byte {
	w := &writer{}
	w.putStrings(p.VertexHashes)
	return w.buf
}

// UnmarshalSyncPayload parses a SyncPayload frame.
func UnmarshalSyncPayload(b []byte) (SyncPayload, error) {
	r := &reader{buf: b}
	hashes, err := r.strings()
	if err != nil {
		return SyncPayload{}, err
	}
	return SyncPayload{VertexHashes: hashes}, nil
}

// Marshal serializes a SyncAcceptPayload.
func (p SyncAcceptPayload) Marshal() []byte {
	w := &writer{}
	marshalWireVertices(w, p.Requested)
	w.putStrings(p.Requesting)
	marshalAggregatedAttestations(w, p.Attestations)
	return w.buf
}

// UnmarshalSyncAcceptPayload parses a SyncAcceptPayload frame.
func UnmarshalSyncAcceptPayload(b []byte) (SyncAcceptPayload, error) {
	r := &reader{buf: b}
	requested, err := unmarshalWireVertices(r)
	if err != nil {
		return SyncAcceptPayload{}, err
	}
	requesting, err := r.strings()
	if err != nil {
		return SyncAcceptPayload{}, err
	}
	atts, err := unmarshalAggregatedAttestations(r)
	if err != nil {
		return SyncAcceptPayload{}, err
	}
	return SyncAcceptPayload{Requested: requested, Requesting: requesting, Attestations: atts}, nil
}

// Marshal serializes an AttestationUpdatePayload.
func (p AttestationUpdatePayload) Marshal() []byte {
	w := &writer{}
	marshalAttestations(w, p.Attestations)
	return w.buf
}

// UnmarshalAttestationUpdatePayload parses an AttestationUpdatePayload frame.
func UnmarshalAttestationUpdatePayload(b []byte) (AttestationUpdatePayload, error) {
	r := &reader{buf: b}
	atts, err := unmarshalAttestations(r)
	if err != nil {
		return AttestationUpdatePayload{}, err
	}
	return AttestationUpdatePayload{Attestations: atts}, nil
}

// Marshal serializes a DiscoveryResponsePayload.
func (p DiscoveryResponsePayload) Marshal() []byte {
	w := &writer{}
	w.putUint32(len(p.Subscribers))
	// map iteration order doesn't matter: every frame carries its own count
	// and the peer ids are read back by key, not by position.
	for peerID, addrs := range p.Subscribers {
		w.putString(peerID)
		w.putStrings(addrs.Multiaddrs)
	}
	return w.buf
}

// UnmarshalDiscoveryResponsePayload parses a DiscoveryResponsePayload frame.
func UnmarshalDiscoveryResponsePayload(b []byte) (DiscoveryResponsePayload, error) {
	r := &reader{buf: b}
	n, err := r.uint32()
	if err != nil {
		return DiscoveryResponsePayload{}, err
	}
	subs := make(map[string]PeerAddrs, n)
	for i := 0; i < n; i++ {
		peerID, err := r.string()
		if err != nil {
			return DiscoveryResponsePayload{}, err
		}
		addrs, err := r.strings()
		if err != nil {
			return DiscoveryResponsePayload{}, err
		}
		subs[peerID] = PeerAddrs{Multiaddrs: addrs}
	}
	return DiscoveryResponsePayload{Subscribers: subs}, nil
}
