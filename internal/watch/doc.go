// Package watch turns source tree changes and timer ticks into rebuild
// requests. Requests are coalesced: a burst of events yields one rebuild.
package watch
