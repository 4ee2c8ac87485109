package store

import (
	"errors"
	"sync"
	"testing"

	lserrors "github.com/0w0mewo/lsctl/internal/localsend/errors"
	"github.com/0w0mewo/lsctl/internal/models"
)

func TestAddItemRejectsDuplicates(t *testing.T) {
	s := New()

	items := []models.SelectedItem{
		models.NewFileItem("/tmp/a.bin"),
		models.NewFolderItem("/tmp/photos", 3),
		models.NewTextItem("note.txt", "hello"),
	}
	for _, it := range items {
		if err := s.AddItem(it); err != nil {
			t.Fatalf("AddItem(%s) failed: %v", it.Kind, err)
		}
	}

	dups := []models.SelectedItem{
		models.NewFileItem("/tmp/a.bin"),
		models.NewFolderItem("/tmp/photos", 9),
		models.NewTextItem("note.txt", "hello"),
	}
	for _, it := range dups {
		err := s.AddItem(it)
		if !errors.Is(err, lserrors.ErrDuplicateItem) {
			t.Errorf("AddItem(dup %s) = %v; want ErrDuplicateItem", it.Kind, err)
		}
	}

	sel := s.Selection()
	if len(sel) != 3 {
		t.Fatalf("len(Selection) = %d; want 3", len(sel))
	}
	for i := range items {
		if sel[i].ID != items[i].ID {
			t.Errorf("Selection[%d] replaced: got id %s want %s", i, sel[i].ID, items[i].ID)
		}
	}
}

func TestRemoveAndClearSelection(t *testing.T) {
	s := New()
	a := models.NewFileItem("/a")
	b := models.NewFileItem("/b")
	s.AddItem(a)
	s.AddItem(b)

	if !s.RemoveItem(a.ID) {
		t.Error("RemoveItem returned false")
	}
	if s.RemoveItem(a.ID) {
		t.Error("second RemoveItem should be a no-op")
	}
	if len(s.Selection()) != 1 {
		t.Errorf("len(Selection) = %d; want 1", len(s.Selection()))
	}

	s.ClearSelection()
	if len(s.Selection()) != 0 {
		t.Error("selection not cleared")
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	s := New()

	var mu sync.Mutex
	calls := 0
	unsub := s.Subscribe(func(st State) {
		mu.Lock()
		defer mu.Unlock()
		calls++
	})

	s.AddItem(models.NewFileItem("/a"))
	s.AddItem(models.NewFileItem("/a")) // duplicate, no change
	unsub()
	s.AddItem(models.NewFileItem("/b"))

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("listener calls = %d; want 1", calls)
	}
}

func TestSubscribeDeliversInOrder(t *testing.T) {
	s := New()

	var seen []uint64
	unsub := s.Subscribe(func(st State) {
		seen = append(seen, st.Version)
	})
	defer unsub()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.SetBackendRunning(j%2 == 0)
				s.AddItem(models.NewTextItem("", "x"))
			}
		}()
	}
	wg.Wait()

	for i := 1; i < len(seen); i++ {
		if seen[i] <= seen[i-1] {
			t.Fatalf("version %d delivered after %d", seen[i], seen[i-1])
		}
	}
	if len(seen) == 0 {
		t.Fatal("no state delivered")
	}
	if last, cur := seen[len(seen)-1], s.Get().Version; last != cur {
		t.Errorf("last delivered version = %d; want %d", last, cur)
	}
}

func TestGetReturnsSnapshot(t *testing.T) {
	s := New()
	s.AddItem(models.NewFileItem("/a"))

	snap := s.Get()
	snap.Selection[0].FileName = "mutated"

	if s.Selection()[0].FileName == "mutated" {
		t.Error("snapshot mutation leaked into store")
	}
}

func TestUpsertDeviceOnePerFingerprint(t *testing.T) {
	s := New()

	events := []models.Device{
		{Fingerprint: "A", Alias: "Phone", IPAddress: "10.0.0.2", Port: 53317},
		{Fingerprint: "B", Alias: "Laptop"},
		{Fingerprint: "A", Alias: "Phone 2"},
		{Fingerprint: "A", IPAddress: "10.0.0.9"},
		{Fingerprint: "B", DeviceModel: "ThinkPad"},
	}
	for _, ev := range events {
		s.UpsertDevice(ev)
	}

	devs := s.Get().Devices
	if len(devs) != 2 {
		t.Fatalf("len(Devices) = %d; want 2", len(devs))
	}

	a, _ := s.Device("A")
	if a.Alias != "Phone 2" || a.IPAddress != "10.0.0.9" || a.Port != 53317 {
		t.Errorf("device A = %+v", a)
	}
	b, _ := s.Device("B")
	if b.Alias != "Laptop" || b.DeviceModel != "ThinkPad" {
		t.Errorf("device B = %+v", b)
	}
}

func TestUpsertRefreshesSelectedDevice(t *testing.T) {
	s := New()
	s.UpsertDevice(models.Device{Fingerprint: "A", Alias: "Old"})
	if err := s.SelectDevice("A"); err != nil {
		t.Fatal(err)
	}

	s.UpsertDevice(models.Device{Fingerprint: "A", Alias: "New"})

	sel := s.Get().SelectedDevice
	if sel == nil || sel.Alias != "New" {
		t.Errorf("SelectedDevice = %+v; want alias New", sel)
	}

	if err := s.SelectDevice("missing"); !errors.Is(err, lserrors.ErrNoTargetSelected) {
		t.Errorf("SelectDevice(missing) = %v", err)
	}
}

func TestBackendStopClearsDevices(t *testing.T) {
	s := New()
	s.SetBackendRunning(true)
	s.UpsertDevice(models.Device{Fingerprint: "A"})
	s.SelectDevice("A")

	if !s.SetBackendRunning(false) {
		t.Fatal("expected state change")
	}
	st := s.Get()
	if len(st.Devices) != 0 || st.SelectedDevice != nil {
		t.Errorf("devices not cleared: %+v", st.Devices)
	}
	if s.SetBackendRunning(false) {
		t.Error("repeated stop should not report a change")
	}
}

func TestClearUploadIdempotent(t *testing.T) {
	s := New()
	s.BeginUpload(&models.UploadProgress{SessionID: "s1", Phase: models.PhaseAwaitingEvent})

	if s.BeginUpload(&models.UploadProgress{SessionID: "s2"}) {
		t.Error("BeginUpload should refuse while an upload is active")
	}
	if _, ok := s.ClearUpload("other"); ok {
		t.Error("ClearUpload with foreign id should not clear")
	}
	if _, ok := s.ClearUpload("s1"); !ok {
		t.Error("ClearUpload(s1) should clear")
	}
	if _, ok := s.ClearUpload("s1"); ok {
		t.Error("second ClearUpload(s1) should be a no-op")
	}
}

func TestReceiveSessionMatching(t *testing.T) {
	s := New()
	s.StartReceive(models.ReceiveProgress{SessionID: "A", TotalFiles: 2})
	s.StartReceive(models.ReceiveProgress{SessionID: "B", TotalFiles: 5})

	changed := s.ModifyReceive("A", func(r *models.ReceiveProgress) bool {
		r.CompletedCount = 2
		return true
	})
	if changed {
		t.Error("stale session A modified current state")
	}
	if s.EndReceive("A") {
		t.Error("EndReceive(A) should not clear session B")
	}
	if s.Get().Receive.SessionID != "B" {
		t.Error("session B lost")
	}
	if !s.EndReceive("B") {
		t.Error("EndReceive(B) failed")
	}
}

func TestSelfCancelledConsumedOnce(t *testing.T) {
	s := New()
	s.MarkSelfCancelled("X")

	if !s.ConsumeSelfCancelled("X") {
		t.Error("first consume should match")
	}
	if s.ConsumeSelfCancelled("X") {
		t.Error("marker should be forgotten after one comparison")
	}

	s.MarkSelfCancelled("Y")
	if s.ConsumeSelfCancelled("Z") {
		t.Error("foreign session should not match")
	}
	if s.ConsumeSelfCancelled("Y") {
		t.Error("marker should be forgotten even after a mismatch")
	}
}

func TestPendingShare(t *testing.T) {
	s := New()
	if _, ok := s.TakePendingShare(); ok {
		t.Error("no pending share expected")
	}

	s.SetPendingShare([]models.SelectedItem{models.NewFileItem("/a")})
	p, ok := s.TakePendingShare()
	if !ok || len(p.Files) != 1 {
		t.Fatalf("TakePendingShare = %+v, %v", p, ok)
	}
	if _, ok := s.TakePendingShare(); ok {
		t.Error("pending share should be cleared after take")
	}
}
