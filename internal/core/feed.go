package core

import (
	"sync"

	"github.com/transpass/transpass/internal/model"
)

const feedBuffer = 16

// ScanFeed fans logged scans out to live subscribers of a company. Publish
// never blocks: a subscriber whose buffer is full misses the event.
type ScanFeed struct {
	mu   sync.Mutex
	subs map[string]map[chan model.ScanEvent]struct{}
}

func NewScanFeed() *ScanFeed {
	return &ScanFeed{subs: make(map[string]map[chan model.ScanEvent]struct{})}
}

// Subscribe registers a listener for companyID. The returned cancel func
// unregisters it and closes the channel; it is safe to call more than once.
func (f *ScanFeed) Subscribe(companyID string) (<-chan model.ScanEvent, func()) {
	ch := make(chan model.ScanEvent, feedBuffer)

	f.mu.Lock()
	if f.subs[companyID] == nil {
		f.subs[companyID] = make(map[chan model.ScanEvent]struct{})
	}
	f.subs[companyID][ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs[companyID], ch)
			if len(f.subs[companyID]) == 0 {
				delete(f.subs, companyID)
			}
			close(ch)
		})
	}
}

// Publish delivers evt to every subscriber of evt.CompanyID.
func (f *ScanFeed) Publish(evt model.ScanEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[evt.CompanyID] {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribers returns the number of live subscribers for companyID.
func (f *ScanFeed) Subscribers(companyID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[companyID])
}
