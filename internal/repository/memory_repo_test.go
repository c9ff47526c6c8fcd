package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/cardoctor/internal/model"
	"github.com/hitoshi/cardoctor/internal/query"
)

func TestMemoryRepos_ImplementInterfaces(t *testing.T) {
	var _ ServiceRepository = (*MemoryServiceRepo)(nil)
	var _ BookingRepository = (*MemoryBookingRepo)(nil)
	var _ Pinger = (*MemoryServiceRepo)(nil)
}

func titles(services []*model.Service) []string {
	out := make([]string, len(services))
	for i, s := range services {
		out[i] = s.Title
	}
	return out
}

func containsTitle(services []*model.Service, title string) bool {
	for _, s := range services {
		if s.Title == title {
			return true
		}
	}
	return false
}

func TestMemoryServiceRepo_List_NoSearch_MatchesAll(t *testing.T) {
	repo := NewMemoryServiceRepo(DemoServices()...)

	services, err := repo.List(context.Background(), query.Build(query.Params{}))
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(services) != len(DemoServices()) {
		t.Errorf("len = %d, want %d", len(services), len(DemoServices()))
	}
	if !containsTitle(services, "Engine Tune-Up") {
		t.Errorf("titles = %v, want Engine Tune-Up included", titles(services))
	}
}

func TestMemoryServiceRepo_List_SearchBrake(t *testing.T) {
	repo := NewMemoryServiceRepo(DemoServices()...)

	services, err := repo.List(context.Background(), query.Build(query.Params{Search: "brake"}))
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if !containsTitle(services, "Brake Pad Replacement") {
		t.Errorf("titles = %v, want Brake Pad Replacement", titles(services))
	}
	if containsTitle(services, "Engine Tune-Up") {
		t.Errorf("titles = %v, should not include Engine Tune-Up", titles(services))
	}
}

func TestMemoryServiceRepo_List_SortsByPrice(t *testing.T) {
	repo := NewMemoryServiceRepo(DemoServices()...)

	tests := []struct {
		sort string
		asc  bool
	}{
		{"asc", true},
		{"desc", false},
		{"", false},
		{"bogus", false},
	}

	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			services, err := repo.List(context.Background(), query.Build(query.Params{Sort: tt.sort}))
			if err != nil {
				t.Fatalf("List returned error: %v", err)
			}
			for i := 1; i < len(services); i++ {
				prev, cur := services[i-1].Price, services[i].Price
				if tt.asc && prev > cur {
					t.Errorf("not ascending at %d: %v > %v", i, prev, cur)
				}
				if !tt.asc && prev < cur {
					t.Errorf("not descending at %d: %v < %v", i, prev, cur)
				}
			}
		})
	}
}

func TestMemoryServiceRepo_FindByID(t *testing.T) {
	demo := DemoServices()
	repo := NewMemoryServiceRepo(demo...)

	got, err := repo.FindByID(context.Background(), demo[0].ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if got == nil || *got != *demo[0].Summary() {
		t.Errorf("summary = %+v, want %+v", got, demo[0].Summary())
	}

	missing, err := repo.FindByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if missing != nil {
		t.Errorf("missing = %+v, want nil", missing)
	}
}

func TestMemoryServiceRepo_CanceledContext(t *testing.T) {
	repo := NewMemoryServiceRepo(DemoServices()...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.List(ctx, query.Build(query.Params{})); err == nil {
		t.Error("List should fail with a canceled context")
	}
	if err := repo.Ping(ctx); err == nil {
		t.Error("Ping should fail with a canceled context")
	}
}

func newBooking(id, email string) *model.Booking {
	return &model.Booking{
		ID:        id,
		Email:     email,
		Status:    "pending",
		Fields:    map[string]json.RawMessage{"note": json.RawMessage(`"x"`)},
		CreatedAt: time.Now(),
	}
}

func TestMemoryBookingRepo_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepo()

	for _, b := range []*model.Booking{
		newBooking("b1", "a@x.com"),
		newBooking("b2", "b@x.com"),
		newBooking("b3", "a@x.com"),
	} {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	own, err := repo.ListByOwner(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("ListByOwner returned error: %v", err)
	}
	if len(own) != 2 || own[0].ID != "b1" || own[1].ID != "b3" {
		t.Errorf("ListByOwner = %+v", own)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListAll len = %d, want 3", len(all))
	}
}

func TestMemoryBookingRepo_Create_DuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepo()

	if err := repo.Create(ctx, newBooking("b1", "a@x.com")); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := repo.Create(ctx, newBooking("b1", "a@x.com")); err == nil {
		t.Error("duplicate id should fail")
	}
}

func TestMemoryBookingRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepo()
	b := newBooking("b1", "a@x.com")
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	b.Fields["note"] = json.RawMessage(`"mutated"`)

	got, err := repo.FindByID(ctx, "b1")
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if string(got.Fields["note"]) != `"x"` {
		t.Errorf("stored fields changed through caller map: %s", got.Fields["note"])
	}
}

func TestMemoryBookingRepo_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepo()
	if err := repo.Create(ctx, newBooking("b1", "a@x.com")); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	res, err := repo.UpdateStatus(ctx, "b1", "confirmed")
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if *res != (model.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}) {
		t.Errorf("result = %+v", res)
	}

	res, _ = repo.UpdateStatus(ctx, "b1", "confirmed")
	if *res != (model.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 0}) {
		t.Errorf("same status result = %+v", res)
	}

	res, _ = repo.UpdateStatus(ctx, "missing", "confirmed")
	if *res != (model.UpdateResult{Acknowledged: true}) {
		t.Errorf("unknown id result = %+v", res)
	}

	got, _ := repo.FindByID(ctx, "b1")
	if got.Status != "confirmed" || string(got.Fields["note"]) != `"x"` {
		t.Errorf("booking after update = %+v", got)
	}
}

func TestMemoryBookingRepo_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepo()
	if err := repo.Create(ctx, newBooking("b1", "a@x.com")); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	res, err := repo.Delete(ctx, "b1")
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if res.DeletedCount != 1 {
		t.Errorf("DeletedCount = %d, want 1", res.DeletedCount)
	}

	res, _ = repo.Delete(ctx, "b1")
	if !res.Acknowledged || res.DeletedCount != 0 {
		t.Errorf("second delete = %+v", res)
	}

	all, _ := repo.ListAll(ctx)
	if len(all) != 0 {
		t.Errorf("ListAll len = %d, want 0", len(all))
	}
}

func TestMemoryBookingRepo_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepo()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("b%d", i)
			_ = repo.Create(ctx, newBooking(id, "a@x.com"))
			_, _ = repo.ListByOwner(ctx, "a@x.com")
			_, _ = repo.UpdateStatus(ctx, id, "done")
		}(i)
	}
	wg.Wait()

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	for _, b := range all {
		if b.Status != "done" {
			t.Errorf("booking %s status = %q, want done", b.ID, b.Status)
		}
	}
}
