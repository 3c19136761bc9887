package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mirrorbrain/internal/domain"
)

func openTestConsentRepo(t *testing.T) *SqliteConsentRepository {
	t.Helper()
	repo, err := OpenSqliteConsentRepository(filepath.Join(t.TempDir(), "consent.db"))
	if err != nil {
		t.Fatalf("open consent repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSqliteConsentRepoLogAndFetch(t *testing.T) {
	repo := openTestConsentRepo(t)
	ctx := context.Background()

	proof := domain.ConsentProof{
		ProofHash:   "hash-1",
		Timestamp:   time.Now().UnixMilli(),
		Version:     "2.1",
		Acks:        []string{"terms", "privacy"},
		Page:        "/quiz",
		Fingerprint: "fp-1",
		UserAgent:   "test-agent",
		Timezone:    "UTC",
		ConsentType: domain.ConsentTypeFull,
		LoggedAt:    time.Now().UTC(),
	}
	id, err := repo.Log(ctx, proof)
	if err != nil {
		t.Fatalf("log consent: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected generated id")
	}

	proofs, err := repo.GetByFingerprint(ctx, "fp-1")
	if err != nil {
		t.Fatalf("get by fingerprint: %v", err)
	}
	if len(proofs) != 1 {
		t.Fatalf("expected 1 proof, got %d", len(proofs))
	}

	got := proofs[0]
	if got.ProofHash != "hash-1" || got.Version != "2.1" || got.Page != "/quiz" {
		t.Fatalf("unexpected proof: %+v", got)
	}
	if len(got.Acks) != 2 || got.Acks[0] != "terms" {
		t.Fatalf("expected acks round-tripped, got %v", got.Acks)
	}
	if got.Timezone != "UTC" {
		t.Fatalf("expected timezone round-tripped, got %q", got.Timezone)
	}
	if got.LoggedAt.IsZero() {
		t.Fatalf("expected logged_at parsed")
	}
}

func TestSqliteConsentRepoGetByFingerprint_Empty(t *testing.T) {
	repo := openTestConsentRepo(t)

	proofs, err := repo.GetByFingerprint(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get by fingerprint: %v", err)
	}
	if len(proofs) != 0 {
		t.Fatalf("expected no proofs, got %d", len(proofs))
	}
}

func TestSqliteConsentRepoStats(t *testing.T) {
	repo := openTestConsentRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seed := []domain.ConsentProof{
		{ProofHash: "h1", Timestamp: now.UnixMilli(), Version: "1.0", Page: "/quiz", Fingerprint: "fp-1", ConsentType: domain.ConsentTypeFull, LoggedAt: now},
		{ProofHash: "h2", Timestamp: now.UnixMilli(), Version: "2.1", Page: "/quiz", Fingerprint: "fp-1", ConsentType: domain.ConsentTypeQuick, LoggedAt: now},
		{ProofHash: "h3", Timestamp: now.AddDate(0, 0, -30).UnixMilli(), Version: "1.0", Page: "/", Fingerprint: "fp-2", ConsentType: domain.ConsentTypeFull, LoggedAt: now},
	}
	for _, proof := range seed {
		if _, err := repo.Log(ctx, proof); err != nil {
			t.Fatalf("log consent: %v", err)
		}
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalConsents != 3 {
		t.Fatalf("expected 3 consents, got %d", stats.TotalConsents)
	}
	if stats.FullConsents != 2 || stats.QuickConsents != 1 {
		t.Fatalf("unexpected type split: %+v", stats)
	}
	if stats.UniqueFingerprints != 2 {
		t.Fatalf("expected 2 fingerprints, got %d", stats.UniqueFingerprints)
	}
	if stats.ConsentsToday != 2 || stats.ConsentsThisWeek != 2 {
		t.Fatalf("unexpected time windows: today=%d week=%d", stats.ConsentsToday, stats.ConsentsThisWeek)
	}
	if len(stats.TopPages) == 0 || stats.TopPages[0].Page != "/quiz" || stats.TopPages[0].Count != 2 {
		t.Fatalf("unexpected top pages: %+v", stats.TopPages)
	}
	if stats.VersionBreakdown["1.0"] != 2 || stats.VersionBreakdown["2.1"] != 1 {
		t.Fatalf("unexpected version breakdown: %+v", stats.VersionBreakdown)
	}
}
