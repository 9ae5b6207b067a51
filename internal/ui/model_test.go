package ui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"namedesk/internal/bridge"
	"namedesk/internal/types"
)

// fakeAPI records every call and serves an in-memory table
type fakeAPI struct {
	mu        sync.Mutex
	records   []types.Record
	calls     map[string]int
	lastAdd   [2]string
	failAdd   string
	failList  string
	failDel   string
	dirResult types.DirectoryResult
	lastDir   string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: map[string]int{}}
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) ListRecords(ctx context.Context) types.RecordsResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["list"]++
	if f.failList != "" {
		return types.RecordsResult{Error: f.failList, Records: []types.Record{}}
	}
	return types.RecordsResult{Success: true, Records: append([]types.Record{}, f.records...)}
}

func (f *fakeAPI) AddRecord(ctx context.Context, id, name string) types.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["add"]++
	f.lastAdd = [2]string{id, name}
	if f.failAdd != "" {
		return types.Result{Error: f.failAdd}
	}
	f.records = append(f.records, types.Record{ID: id, Name: name})
	return types.OK()
}

func (f *fakeAPI) DeleteRecord(ctx context.Context, id, name string) types.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.failDel != "" {
		return types.Result{Error: f.failDel}
	}
	kept := f.records[:0]
	for _, r := range f.records {
		if r.ID != id || r.Name != name {
			kept = append(kept, r)
		}
	}
	f.records = kept
	return types.OK()
}

func (f *fakeAPI) ListDirectory(ctx context.Context, path string) types.DirectoryResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["dir"]++
	f.lastDir = path
	return f.dirResult
}

func TestSubmitBlankNameNeverInvokes(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", " ", "\t\n", "    "} {
		api := newFakeAPI()
		m := NewModel(api, nil, WithWarningTimeout(time.Hour))
		m.SetName(name)

		res := m.Submit(context.Background())
		if res.Success || res.Error != EmptyNameWarning {
			t.Errorf("Submit(%q) = %+v", name, res)
		}
		if n := api.total(); n != 0 {
			t.Errorf("Submit(%q) made %d bridge calls, want 0", name, n)
		}
		if w := m.View().Warning; w != EmptyNameWarning {
			t.Errorf("Warning = %q", w)
		}
		m.Close()
	}
}

func TestWarningAutoClears(t *testing.T) {
	t.Parallel()
	m := NewModel(newFakeAPI(), nil, WithWarningTimeout(30*time.Millisecond))
	defer m.Close()

	m.Submit(context.Background())
	if m.View().Warning == "" {
		t.Fatal("warning not shown")
	}

	deadline := time.Now().Add(time.Second)
	for m.View().Warning != "" {
		if time.Now().After(deadline) {
			t.Fatal("warning was not cleared")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRepeatedWarningRestartsTimer(t *testing.T) {
	t.Parallel()
	m := NewModel(newFakeAPI(), nil, WithWarningTimeout(80*time.Millisecond))
	defer m.Close()

	m.Submit(context.Background())
	time.Sleep(50 * time.Millisecond)
	m.Submit(context.Background())
	time.Sleep(50 * time.Millisecond)
	if m.View().Warning == "" {
		t.Error("second warning cleared by the first timer")
	}
}

func TestWarningClearsWithTinyTimeout(t *testing.T) {
	t.Parallel()
	m := NewModel(newFakeAPI(), nil, WithWarningTimeout(time.Nanosecond))
	defer m.Close()

	for i := 0; i < 200; i++ {
		m.Submit(context.Background())
	}

	deadline := time.Now().Add(time.Second)
	for m.View().Warning != "" {
		if time.Now().After(deadline) {
			t.Fatal("last warning was never cleared")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSubmitAddsTrimmedNameAndRefreshes(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	m := NewModel(api, nil, WithIDGenerator(func() string { return "fixed-id" }))

	m.SetName("  Alice  ")
	if res := m.Submit(context.Background()); !res.Success {
		t.Fatalf("Submit = %+v", res)
	}

	if api.lastAdd != [2]string{"fixed-id", "Alice"} {
		t.Errorf("AddRecord args = %v", api.lastAdd)
	}
	if api.count("list") != 1 {
		t.Errorf("list calls = %d, want 1", api.count("list"))
	}
	v := m.View()
	if v.Name != "" {
		t.Errorf("input not cleared: %q", v.Name)
	}
	if len(v.Records) != 1 || v.Records[0].Name != "Alice" {
		t.Errorf("Records = %+v", v.Records)
	}
}

func TestSubmitDefaultIDsAreUUIDs(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	m := NewModel(api, nil)

	m.SetName("a")
	m.Submit(context.Background())
	m.SetName("b")
	m.Submit(context.Background())

	v := m.View()
	if len(v.Records) != 2 || v.Records[0].ID == v.Records[1].ID {
		t.Fatalf("Records = %+v", v.Records)
	}
	if len(v.Records[0].ID) != 36 || strings.Count(v.Records[0].ID, "-") != 4 {
		t.Errorf("id %q does not look like a UUID", v.Records[0].ID)
	}
}

func TestSubmitFailureKeepsInput(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	api.failAdd = "UNIQUE constraint failed: records.id"
	m := NewModel(api, nil)

	m.SetName("Bob")
	res := m.Submit(context.Background())
	if res.Success {
		t.Fatal("Submit should fail")
	}
	v := m.View()
	if v.Name != "Bob" || v.Error != api.failAdd {
		t.Errorf("view = %+v", v)
	}
	if api.count("list") != 0 {
		t.Error("failed add must not refresh")
	}
}

func TestDeleteAlwaysRefreshes(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	api.records = []types.Record{{ID: "1", Name: "A"}}
	m := NewModel(api, nil)

	m.Delete(context.Background(), types.Record{ID: "1", Name: "A"})
	if api.count("list") != 1 || len(m.View().Records) != 0 {
		t.Errorf("after delete: list calls=%d records=%v", api.count("list"), m.View().Records)
	}

	api.failDel = "disk I/O error"
	res := m.Delete(context.Background(), types.Record{ID: "2", Name: "B"})
	if res.Success || api.count("list") != 2 {
		t.Errorf("failed delete: %+v, list calls=%d", res, api.count("list"))
	}
	if m.View().Error != "disk I/O error" {
		t.Errorf("Error = %q", m.View().Error)
	}
}

func TestRefreshFailureShowsError(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	api.failList = "database is locked"
	m := NewModel(api, nil)

	res := m.Refresh(context.Background())
	v := m.View()
	if res.Success || v.Error != "database is locked" || v.Records == nil {
		t.Errorf("view = %+v", v)
	}
}

func TestSelectDirectoryUsesParentOfPick(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	api.dirResult = types.DirectoryResult{Success: true, Entries: []string{"a.txt", "sub"}}
	m := NewModel(api, nil)

	res := m.SelectDirectory(context.Background(), "/home/me/docs/a.txt")
	if !res.Success || api.lastDir != "/home/me/docs" {
		t.Errorf("listed %q: %+v", api.lastDir, res)
	}
	v := m.View()
	if v.Directory != "/home/me/docs" || len(v.Entries) != 2 {
		t.Errorf("view = %+v", v)
	}

	if res := m.SelectDirectory(context.Background(), " "); res.Success {
		t.Error("empty pick should fail")
	}
	if api.count("dir") != 1 {
		t.Errorf("dir calls = %d", api.count("dir"))
	}
}

func TestOpenDirectoryListsItself(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	api.dirResult = types.DirectoryResult{Success: true, Entries: []string{"x"}}
	m := NewModel(api, nil)

	if res := m.OpenDirectory(context.Background(), "/srv/data"); !res.Success || api.lastDir != "/srv/data" {
		t.Errorf("listed %q: %+v", api.lastDir, res)
	}
	if v := m.View(); v.Directory != "/srv/data" {
		t.Errorf("directory = %q", v.Directory)
	}

	api.dirResult = types.DirectoryResult{Error: "open /missing: no such file or directory", Entries: []string{}}
	res := m.OpenDirectory(context.Background(), "/missing")
	if res.Success || m.View().Error != res.Error {
		t.Errorf("failure not surfaced: %+v / %+v", res, m.View())
	}
	if res := m.OpenDirectory(context.Background(), ""); res.Success || api.count("dir") != 2 {
		t.Errorf("empty dir should fail without a call, calls = %d", api.count("dir"))
	}
}

func TestEventsDriveModel(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	api.dirResult = types.DirectoryResult{Success: true, Entries: []string{"x"}}
	bus := bridge.NewBus(nil)

	var pinged []any
	bus.On(bridge.EventPing, func(args ...any) { pinged = args })

	m := NewModel(api, bus)
	m.SelectDirectory(context.Background(), "/data/file")

	bus.Send(bridge.EventProcessReady, "2024-05-01 09:30:00")
	if got := m.View().ReadyMessage; got != "2024-05-01 09:30:00" {
		t.Errorf("ReadyMessage = %q", got)
	}

	bus.Send(bridge.EventDirectoryChanged, "/elsewhere")
	if api.count("dir") != 1 {
		t.Error("change of another directory should not re-list")
	}
	bus.Send(bridge.EventDirectoryChanged, "/data")
	if api.count("dir") != 2 {
		t.Error("change of the current directory should re-list")
	}

	m.Ping(5)
	if len(pinged) != 1 || pinged[0] != 5 {
		t.Errorf("ping args = %v", pinged)
	}

	m.Close()
	bus.Send(bridge.EventProcessReady, "later")
	if m.View().ReadyMessage == "later" {
		t.Error("closed model still subscribed")
	}
}

func TestPickDirectoryRoundTrip(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	api.dirResult = types.DirectoryResult{Success: true, Entries: []string{"a.txt"}}
	bus := bridge.NewBus(nil)

	// The host answers a pick request with the chosen path.
	requests := 0
	bus.On(bridge.EventPickDirectory, func(...any) {
		requests++
		bus.Send(bridge.EventDirectoryPicked, "/home/me/docs")
	})

	m := NewModel(api, bus)
	defer m.Close()
	m.PickDirectory()

	if requests != 1 {
		t.Fatalf("pick-directory sent %d times", requests)
	}
	if api.lastDir != "/home/me/docs" {
		t.Errorf("listed %q", api.lastDir)
	}
	if v := m.View(); v.Directory != "/home/me/docs" || len(v.Entries) != 1 {
		t.Errorf("view = %+v", v)
	}

	bus.Send(bridge.EventDirectoryPicked, 42)
	bus.Send(bridge.EventDirectoryPicked)
	if api.count("dir") != 1 {
		t.Errorf("malformed picks listed, calls = %d", api.count("dir"))
	}
}

func TestOnChangeAndSnapshots(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	m := NewModel(api, nil)

	var views []View
	stop := m.OnChange(func(v View) { views = append(views, v) })
	m.SetName("x")
	stop()
	m.SetName("y")

	if len(views) != 1 || views[0].Name != "x" {
		t.Errorf("notifications = %+v", views)
	}

	api.records = []types.Record{{ID: "1", Name: "A"}}
	m.Refresh(context.Background())
	snap := m.View()
	snap.Records[0].Name = "mutated"
	if m.View().Records[0].Name != "A" {
		t.Error("View must return a copy")
	}
}
