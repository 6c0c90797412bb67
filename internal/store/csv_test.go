package store

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/erazemk/foodrescue/internal/model"
)

func exportFixture() []model.Post {
	return []model.Post{
		{
			ID:         "20260314090000000123",
			CreatedAt:  time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
			DonorName:  "North Canteen",
			DonorPhone: "9876543210",
			FoodDesc:   "Veg biryani, curd",
			QtyMeals:   10,
			VegType:    model.VegTypeVeg,
			Allergens:  "dairy",
			Address:    "Block A",
			ReadyUntil: ptr(time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)),
			Status:     model.StatusOpen,
			DonorCode:  "1234",
		},
		{
			ID:            "20260314093000000456",
			CreatedAt:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			DonorName:     "Hostel Mess",
			DonorPhone:    "9123456780",
			FoodDesc:      "Chapati and dal",
			QtyMeals:      25,
			VegType:       model.VegTypeMixed,
			Address:       "Hostel 3 gate",
			ReadyUntil:    ptr(time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)),
			Status:        model.StatusCompleted,
			ClaimerName:   "Asha",
			ClaimerPhone:  "9000000002",
			DonorCode:     "0042",
			VolunteerCode: "5678",
			CompletedAt:   ptr(time.Date(2026, 3, 14, 18, 45, 0, 0, time.UTC)),
		},
	}
}

func TestExportGolden(t *testing.T) {
	s := newTestStore(t, time.UTC)
	ctx := context.Background()

	if err := s.SaveAll(ctx, exportFixture()); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	var buf bytes.Buffer
	if err := s.Export(ctx, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	g := goldie.New(t)
	g.Assert(t, "export", buf.Bytes())
}

func TestExportEmptyStoreHasHeader(t *testing.T) {
	s := newTestStore(t, time.UTC)

	var buf bytes.Buffer
	if err := s.Export(context.Background(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "id,created_at_iso,donor_name,") {
		t.Errorf("expected header row, got %q", buf.String())
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("expected only the header row, got %q", buf.String())
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t, time.UTC)
	if err := src.SaveAll(ctx, exportFixture()); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	var buf bytes.Buffer
	if err := src.Export(ctx, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := newTestStore(t, time.UTC)
	res, err := dst.Import(ctx, &buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 0 {
		t.Errorf("expected 2 imported, got %+v", res)
	}

	want := exportFixture()
	got, _ := dst.LoadStored(ctx)
	if len(got) != len(want) {
		t.Fatalf("expected %d posts, got %d", len(want), len(got))
	}
	for i := range want {
		want[i].ReadyUntilHHMM = want[i].ReadyUntil.Format("15:04")
		assertSamePost(t, got[i], want[i])
	}
}

func TestImportLegacyFile(t *testing.T) {
	s := newTestStore(t, time.UTC)
	ctx := context.Background()
	s.Append(ctx, samplePost("20250101120000123", time.UTC))

	// Columns reordered, one missing, one unknown, a BOM, a duplicate and a
	// pandas-style float quantity.
	legacy := "\ufeffstatus,id,donor_name,qty_meals,ready_until_iso,extra\n" +
		"open,20250102090000456,Mess,12.0,2025-01-02T21:00:00+05:30,x\n" +
		"open,20250101120000123,Duplicate,5,,x\n" +
		"claimed,,No id,3,,x\n" +
		"completed,20250102090000456,Repeat in file,1,,x\n"

	res, err := s.Import(ctx, strings.NewReader(legacy))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 1 || res.Skipped != 3 {
		t.Errorf("expected 1 imported and 3 skipped, got %+v", res)
	}

	posts, _ := s.LoadStored(ctx)
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	p := posts[1]
	if p.ID != "20250102090000456" || p.DonorName != "Mess" || p.QtyMeals != 12 {
		t.Errorf("unexpected imported post: %+v", p)
	}
	if want := time.Date(2025, 1, 2, 15, 30, 0, 0, time.UTC); p.ReadyUntil == nil || !p.ReadyUntil.Equal(want) {
		t.Errorf("ReadyUntil = %v, want %v", p.ReadyUntil, want)
	}
	if p.ReadyUntilHHMM != "15:30" {
		t.Errorf("expected HH:MM derived in store zone, got %q", p.ReadyUntilHHMM)
	}
}

func TestImportRequiresIDColumn(t *testing.T) {
	s := newTestStore(t, time.UTC)
	if _, err := s.Import(context.Background(), strings.NewReader("name,qty\nx,1\n")); err == nil {
		t.Error("expected error for a table without an id column")
	}
}
