package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/renohq/quote-engine/internal/estimate"
	"github.com/renohq/quote-engine/internal/model"
	"github.com/renohq/quote-engine/internal/repository"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_DSN in your .env or environment to run integration
	// tests, e.g. user:pass@tcp(localhost:3306)/quote_engine_test?parseTime=true
	// The schema from migrations/schema.sql must already be applied.
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set — skipping integration test to protect live database")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("failed to reach test database: %v", err)
	}

	// Clean in dependency order; the child tables carry FKs.
	for _, stmt := range []string{
		`DELETE FROM deliverables`,
		`DELETE FROM openings`,
		`DELETE FROM summary_rows`,
		`DELETE FROM spaces`,
		`DELETE FROM quotes`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to clean test database: %v", err)
		}
	}
	return db
}

func dd(s string) decimal.Decimal { return decimal.RequireFromString(s) }

const testOwner = uint64(1)

// seedQuoteAndSpace creates a quote with one automatic-mode 12×6×9 ft
// space, the worked example used throughout the engine tests.
func seedQuoteAndSpace(t *testing.T, ctx context.Context, db *sql.DB) (*model.Quote, *model.Space) {
	t.Helper()
	quotes := repository.NewQuoteRepo(db)
	q := &model.Quote{OwnerID: testOwner, Name: "2BHK Renovation"}
	if err := quotes.Create(ctx, q); err != nil {
		t.Fatalf("create quote: %v", err)
	}

	geo, _ := estimate.ComputeGeometry(dd("12"), dd("6"), dd("9"), nil)
	sp := &model.Space{
		QuoteID:   q.ID,
		Name:      "Living Room",
		Category:  "Living Room",
		Length:    dd("12"),
		Breadth:   dd("6"),
		Height:    dd("9"),
		Unit:      model.UnitFeet,
		Perimeter: geo.Perimeter,
		FloorArea: geo.FloorArea,
		WallArea:  geo.WallArea,
	}
	if err := repository.NewSpaceRepo(db).Create(ctx, sp); err != nil {
		t.Fatalf("create space: %v", err)
	}
	return q, sp
}

// Deleting a space must take its openings, its deliverables and its
// summary row with it, atomically; every dependent lookup afterwards
// reports not-found.
func TestSpaceDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	q, sp := seedQuoteAndSpace(t, ctx, db)
	spaces := repository.NewSpaceRepo(db)
	openings := repository.NewOpeningRepo(db)
	deliverables := repository.NewDeliverableRepo(db)
	summaries := repository.NewSummaryRepo(db)

	o := &model.Opening{SpaceID: sp.ID, Type: model.OpeningDoor, Name: "Main Door", Height: dd("7"), Width: dd("2.5")}
	if _, err := openings.Create(ctx, o); err != nil {
		t.Fatalf("create opening: %v", err)
	}
	dl := &model.Deliverable{SpaceID: sp.ID, Description: "Vitrified tile flooring", Unit: "sqft", Qty: dd("140"), Rate: dd("250"), Gst: dd("18")}
	row, err := deliverables.Create(ctx, dl)
	if err != nil {
		t.Fatalf("create deliverable: %v", err)
	}
	if !row.Total.Equal(dd("41300")) {
		t.Fatalf("summary row total = %s, want 41300", row.Total)
	}

	if err := spaces.Delete(ctx, sp.ID); err != nil {
		t.Fatalf("delete space: %v", err)
	}

	if _, err := spaces.GetByIDAndOwner(ctx, sp.ID, testOwner); !errors.Is(err, repository.ErrSpaceNotFound) {
		t.Errorf("space lookup after delete = %v, want ErrSpaceNotFound", err)
	}
	if _, err := openings.GetByIDAndOwner(ctx, o.ID, testOwner); !errors.Is(err, repository.ErrOpeningNotFound) {
		t.Errorf("opening lookup after delete = %v, want ErrOpeningNotFound", err)
	}
	if _, err := deliverables.GetByIDAndOwner(ctx, dl.ID, testOwner); !errors.Is(err, repository.ErrDeliverableNotFound) {
		t.Errorf("deliverable lookup after delete = %v, want ErrDeliverableNotFound", err)
	}
	rows, err := summaries.ListByQuote(ctx, q.ID)
	if err != nil {
		t.Fatalf("list summary: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("summary rows after delete = %d, want 0", len(rows))
	}
}

// While a space is in custom mode its geometry figures are frozen: opening
// mutations must leave perimeter, floor area and wall area exactly as the
// user entered them, only bumping the revision. Clearing the flag
// re-derives the geometry from the dimensions and the surviving openings.
func TestCustomModeFreezesGeometry(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	_, sp := seedQuoteAndSpace(t, ctx, db)
	spaces := repository.NewSpaceRepo(db)
	openings := repository.NewOpeningRepo(db)

	frozen := *sp
	frozen.Custom = true
	frozen.Perimeter = dd("40")
	frozen.FloorArea = dd("80")
	frozen.WallArea = dd("400")
	if err := spaces.Update(ctx, &frozen, sp.Revision); err != nil {
		t.Fatalf("switch to custom: %v", err)
	}

	w := &model.Opening{SpaceID: sp.ID, Type: model.OpeningWindow, Name: "Bay Window", Height: dd("4"), Width: dd("4")}
	if _, err := openings.Create(ctx, w); err != nil {
		t.Fatalf("create opening: %v", err)
	}

	got, err := spaces.GetByIDAndOwner(ctx, sp.ID, testOwner)
	if err != nil {
		t.Fatalf("reload space: %v", err)
	}
	if !got.Perimeter.Equal(dd("40")) || !got.FloorArea.Equal(dd("80")) || !got.WallArea.Equal(dd("400")) {
		t.Errorf("custom geometry changed by opening mutation: perimeter=%s floor=%s wall=%s",
			got.Perimeter, got.FloorArea, got.WallArea)
	}
	if got.Revision <= frozen.Revision {
		t.Errorf("revision = %d, want > %d: opening churn must still invalidate concurrent edits", got.Revision, frozen.Revision)
	}

	// Lift the freeze the way the write boundary does: recompute from the
	// merged dimensions and the space's current openings, then persist.
	thawed := *got
	thawed.Custom = false
	list, err := openings.ListBySpace(ctx, sp.ID)
	if err != nil {
		t.Fatalf("list openings: %v", err)
	}
	dims := make([]estimate.OpeningDims, 0, len(list))
	for _, o := range list {
		dims = append(dims, estimate.OpeningDims{Height: o.Height, Width: o.Width})
	}
	geo, _ := estimate.ComputeGeometry(thawed.Length, thawed.Breadth, thawed.Height, dims)
	thawed.Perimeter, thawed.FloorArea, thawed.WallArea = geo.Perimeter, geo.FloorArea, geo.WallArea
	if err := spaces.Update(ctx, &thawed, got.Revision); err != nil {
		t.Fatalf("clear custom: %v", err)
	}
	if !thawed.Perimeter.Equal(dd("36")) || !thawed.FloorArea.Equal(dd("72")) || !thawed.WallArea.Equal(dd("308")) {
		t.Errorf("re-derived geometry = perimeter %s, floor %s, wall %s; want 36, 72, 308",
			thawed.Perimeter, thawed.FloorArea, thawed.WallArea)
	}
}
