package ports

// ChangeNotifier is the push channel for vote mutations. It is deliberately
// coarse: a wake means "some vote somewhere changed" and carries no payload;
// subscribers re-read their own session and re-filter.
type ChangeNotifier interface {
	// Subscribe returns a channel that receives a wake on every vote
	// mutation, plus a release function the caller must invoke when it stops
	// observing. Wakes are coalesced; a slow subscriber sees at least one.
	Subscribe() (<-chan struct{}, func())
}
