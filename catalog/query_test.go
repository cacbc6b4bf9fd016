package catalog

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"jewelrydam/models"
)

func TestSearchAssets(t *testing.T) {
	s, db, _ := newTestService(t, Options{})
	ctx := context.Background()
	rc := &releaseCounter{}
	spring := ingest(t, s, IngestRequest{Files: rc.files("ring.jpg", "pendant.jpg"), ProjectName: "Spring Collection", ClientName: "Cartier"})
	ingest(t, s, IngestRequest{Files: rc.files("brooch.jpg"), ProjectName: "Winter", ClientName: "Bulgari"})
	ingest(t, s, IngestRequest{Files: rc.files("100%_gold.jpg")})

	desc := "Rose gold with sapphire"
	if _, err := s.UpdateAsset(ctx, spring.Assets[1].ID, AssetPatch{Description: &desc}); err != nil {
		t.Fatal(err)
	}
	// Rename the project without touching the denormalised column, the join still finds it
	if err := db.Model(&models.Project{}).Where("id = ?", spring.Project.ID).Update("name", "Solstice").Error; err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		q    string
		want []string
	}{
		{"spring", []string{"pendant.jpg", "ring.jpg"}},
		{"SOLSTICE", []string{"pendant.jpg", "ring.jpg"}},
		{"bulgari", []string{"brooch.jpg"}},
		{"sapphire", []string{"pendant.jpg"}},
		{"brooch", []string{"brooch.jpg"}},
		{"100%", []string{"100%_gold.jpg"}},
		{"%", []string{"100%_gold.jpg"}},
		{"emerald", []string{}},
		{"", []string{"100%_gold.jpg", "brooch.jpg", "pendant.jpg", "ring.jpg"}},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			assets, err := s.SearchAssets(ctx, tt.q)
			if err != nil {
				t.Fatalf("SearchAssets() error = %v", err)
			}
			got := []string{}
			for _, a := range assets {
				got = append(got, a.Name)
			}
			sort.Strings(got)
			if len(got) != len(tt.want) {
				t.Fatalf("SearchAssets(%q) = %v, want %v", tt.q, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("SearchAssets(%q) = %v, want %v", tt.q, got, tt.want)
					break
				}
			}
		})
	}
}

func TestListProjects(t *testing.T) {
	s, db, _ := newTestService(t, Options{})
	ctx := context.Background()
	rc := &releaseCounter{}
	result := ingest(t, s, IngestRequest{Files: rc.files("old.jpg", "new.jpg"), ProjectName: "Heritage"})
	if _, err := s.CreateProject(ctx, ProjectInput{Name: "Empty"}); err != nil {
		t.Fatal(err)
	}
	yesterday := time.Now().Add(-24 * time.Hour)
	if err := db.Model(&models.Asset{}).Where("id = ?", result.Assets[0].ID).UpdateColumn("created_at", yesterday).Error; err != nil {
		t.Fatal(err)
	}

	projects, err := s.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(projects) != 2 || projects[0].Name != "Empty" {
		t.Fatalf("ListProjects() = %+v", projects)
	}
	if projects[0].AssetCount != 0 || projects[0].LatestImage != nil || len(projects[0].UploadDates) != 0 {
		t.Errorf("empty project summary = %+v", projects[0])
	}
	heritage := projects[1]
	if heritage.AssetCount != 2 {
		t.Errorf("asset_count = %d, want 2", heritage.AssetCount)
	}
	if heritage.LatestImage == nil || *heritage.LatestImage != result.Assets[1].PrimaryImageURL {
		t.Errorf("latest_image = %v, want %s", heritage.LatestImage, result.Assets[1].PrimaryImageURL)
	}
	wantDates := []string{time.Now().UTC().Format(models.DateLayout), yesterday.UTC().Format(models.DateLayout)}
	if len(heritage.UploadDates) != 2 || heritage.UploadDates[0] != wantDates[0] || heritage.UploadDates[1] != wantDates[1] {
		t.Errorf("upload_dates = %v, want %v", heritage.UploadDates, wantDates)
	}

	detail, err := s.GetProject(ctx, heritage.ID)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if detail.AssetCount != 2 || len(detail.AssetsByDate) != 2 || detail.AssetsByDate[1].Assets[0].Name != "old.jpg" {
		t.Errorf("GetProject() = %+v", detail)
	}
}

func TestRecentAssets(t *testing.T) {
	s, _, _ := newTestService(t, Options{})
	rc := &releaseCounter{}
	names := []string{}
	for i := 0; i < 12; i++ {
		names = append(names, string(rune('a'+i))+".jpg")
	}
	ingest(t, s, IngestRequest{Files: rc.files(names...)})
	recent, err := s.RecentAssets(context.Background(), 0)
	if err != nil || len(recent) != DefaultRecentAssets {
		t.Errorf("RecentAssets() = %d, %v, want %d", len(recent), err, DefaultRecentAssets)
	}
	recent, _ = s.RecentAssets(context.Background(), 3)
	if len(recent) != 3 {
		t.Errorf("RecentAssets(3) = %d", len(recent))
	}
}

func TestRecentUploadLog(t *testing.T) {
	s, _, _ := newTestService(t, Options{})
	rc := &releaseCounter{}
	ingest(t, s, IngestRequest{Files: rc.files("a.jpg", "b.jpg")})
	entries, err := s.RecentUploadLog(context.Background(), 0)
	if err != nil {
		t.Fatalf("RecentUploadLog() error = %v", err)
	}
	if len(entries) != 6 {
		t.Errorf("RecentUploadLog() = %d entries, want 6", len(entries))
	}
	if entries, _ = s.RecentUploadLog(context.Background(), 2); len(entries) != 2 {
		t.Errorf("RecentUploadLog(2) = %d entries, want 2", len(entries))
	}
}

func TestClients(t *testing.T) {
	s, _, _ := newTestService(t, Options{})
	ctx := context.Background()
	if clients, _ := s.ListClients(ctx); clients == nil || len(clients) != 0 {
		t.Errorf("ListClients() = %v, want empty slice", clients)
	}
	for _, name := range []string{"Zeta", "Alpha"} {
		if _, err := s.CreateClient(ctx, name); err != nil {
			t.Fatal(err)
		}
	}
	var verr ValidationError
	if _, err := s.CreateClient(ctx, "  "); !errors.As(err, &verr) {
		t.Errorf("CreateClient(blank) error = %v, want ValidationError", err)
	}
	clients, _ := s.ListClients(ctx)
	if len(clients) != 2 || clients[0].Name != "Alpha" {
		t.Errorf("ListClients() = %+v", clients)
	}
}
