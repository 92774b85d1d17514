package importer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/coachdesk/swimmeet/internal/swim"
)

// fakeStore is an in-memory Store with the same conflict semantics as the
// real one: first-write-wins swimmer upserts and duplicate-suppressed time
// inserts. Error fields inject storage failures.
type fakeStore struct {
	swimmers map[string]swim.Swimmer
	times    []swim.SwimmerTime
	timeKeys map[string]struct{}
	loads    []fakeLoad

	upsertErr error
	insertErr error
	loadErr   error
}

type fakeLoad struct {
	numSwimmers int
	numEntries  int
	duration    time.Duration
	swimmerIDs  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		swimmers: make(map[string]swim.Swimmer),
		timeKeys: make(map[string]struct{}),
	}
}

func (f *fakeStore) UpsertSwimmer(_ context.Context, sw swim.Swimmer) (string, error) {
	if f.upsertErr != nil {
		return "", f.upsertErr
	}
	if _, exists := f.swimmers[sw.ID]; !exists {
		f.swimmers[sw.ID] = sw
	}
	return sw.ID, nil
}

func (f *fakeStore) FindSwimmerByName(_ context.Context, fullName string) (swim.Swimmer, error) {
	first, last := swim.SplitLookupName(fullName)

	var ids []string
	for id, sw := range f.swimmers {
		if sw.FirstName == first && sw.LastName == last {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return swim.Swimmer{}, fmt.Errorf("swimmer not found")
	}
	sort.Strings(ids)
	return f.swimmers[ids[0]], nil
}

func (f *fakeStore) InsertTime(_ context.Context, t swim.SwimmerTime) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	key := fmt.Sprintf("%s|%s|%d|%s|%d", t.SwimmerID, t.Style, t.Distance, t.Course, t.Millis)
	if _, dup := f.timeKeys[key]; dup {
		return false, nil
	}
	f.timeKeys[key] = struct{}{}
	f.times = append(f.times, t)
	return true, nil
}

func (f *fakeStore) InsertEntriesLoad(_ context.Context, numSwimmers, numEntries int, duration time.Duration, swimmerIDs []string) (string, error) {
	if f.loadErr != nil {
		return "", f.loadErr
	}
	f.loads = append(f.loads, fakeLoad{
		numSwimmers: numSwimmers,
		numEntries:  numEntries,
		duration:    duration,
		swimmerIDs:  swimmerIDs,
	})
	return fmt.Sprintf("load-%d", len(f.loads)), nil
}
