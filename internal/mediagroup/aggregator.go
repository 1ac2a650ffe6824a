package mediagroup

import (
	"sync"
	"time"
)

// Item is one photo of a Telegram album.
type Item struct {
	ChatID       int64
	UserID       int64
	MediaGroupID string
	Caption      string
	FileID       string
	FileName     string
}

// Group is a complete album, files in arrival order.
type Group struct {
	ChatID    int64
	UserID    int64
	Caption   string
	FileIDs   []string
	FileNames []string
	// Dropped counts files beyond MaxItems.
	Dropped int
}

type Options struct {
	Debounce time.Duration
	MaxItems int
	OnFlush  func(Group)
}

type Aggregator struct {
	mu       sync.Mutex
	debounce time.Duration
	maxItems int
	onFlush  func(Group)
	groups   map[groupKey]*pendingGroup
	stopped  bool
}

type groupKey struct {
	chatID       int64
	mediaGroupID string
}

type pendingGroup struct {
	group Group
	timer *time.Timer
}

func New(opts Options) *Aggregator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 1200 * time.Millisecond
	}

	return &Aggregator{
		debounce: debounce,
		maxItems: opts.MaxItems,
		onFlush:  opts.OnFlush,
		groups:   make(map[groupKey]*pendingGroup),
	}
}

// Add buffers an album item. The group is flushed once no new item has
// arrived for the debounce period.
func (a *Aggregator) Add(item Item) {
	if item.MediaGroupID == "" || item.FileID == "" {
		return
	}

	key := groupKey{chatID: item.ChatID, mediaGroupID: item.MediaGroupID}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}

	pg, ok := a.groups[key]
	if !ok {
		pg = &pendingGroup{group: Group{ChatID: item.ChatID, UserID: item.UserID}}
		a.groups[key] = pg
	}

	if a.maxItems > 0 && len(pg.group.FileIDs) >= a.maxItems {
		pg.group.Dropped++
	} else {
		pg.group.FileIDs = append(pg.group.FileIDs, item.FileID)
		pg.group.FileNames = append(pg.group.FileNames, item.FileName)
	}
	if item.Caption != "" && pg.group.Caption == "" {
		pg.group.Caption = item.Caption
	}

	if pg.timer != nil {
		pg.timer.Stop()
	}
	pg.timer = time.AfterFunc(a.debounce, func() {
		a.flush(key)
	})
}

// Stop cancels pending flushes and ignores further items.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopped = true
	for key, pg := range a.groups {
		if pg.timer != nil {
			pg.timer.Stop()
		}
		delete(a.groups, key)
	}
}

func (a *Aggregator) pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.groups)
}

func (a *Aggregator) flush(key groupKey) {
	a.mu.Lock()
	pg, ok := a.groups[key]
	if !ok {
		a.mu.Unlock()
		return
	}
	delete(a.groups, key)
	group := pg.group
	onFlush := a.onFlush
	a.mu.Unlock()

	if onFlush != nil {
		onFlush(group)
	}
}
