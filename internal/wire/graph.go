package wire

// NodeEntitiesInfo names the readers and writers one node owns, keyed
// by their GUIDs, as published on the ros_discovery_info graph topic
// so other participants can resolve a GUID back to a node name.
type NodeEntitiesInfo struct {
	NodeNamespace string
	NodeName      string
	ReaderGUIDs   [][16]byte
	WriterGUIDs   [][16]byte
}

// ParticipantEntitiesInfo is the full per-participant graph update:
// one entry per node the participant currently hosts.
type ParticipantEntitiesInfo struct {
	ParticipantGUID [16]byte
	NodeEntities    []NodeEntitiesInfo
}
