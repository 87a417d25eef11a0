package tag

// UpdateActions partitions a client's desired tag set against the server's
// current set into the writes that reconcile them.
type UpdateActions struct {
	Ignore []int64
	Add    []int64
	Remove []int64
}

// ParseUpdateActions diffs the client's full desired tag ids against the
// server's current ids. Ids in both are ignored, ids only the client sent
// are added, and ids only the server holds are removed.
func ParseUpdateActions(client, server []int64) UpdateActions {
	clientSet := make(map[int64]bool, len(client))
	for _, id := range client {
		clientSet[id] = true
	}
	serverSet := make(map[int64]bool, len(server))
	for _, id := range server {
		serverSet[id] = true
	}

	actions := UpdateActions{}
	for _, id := range client {
		if serverSet[id] {
			actions.Ignore = append(actions.Ignore, id)
		} else {
			actions.Add = append(actions.Add, id)
		}
	}
	for _, id := range server {
		if !clientSet[id] {
			actions.Remove = append(actions.Remove, id)
		}
	}

	return actions
}
