package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"estate_search/internal/domain"

	"github.com/google/uuid"
)

func TestExecute_Version(t *testing.T) {
	var out bytes.Buffer
	if err := Execute("1.2.3", []string{"--version"}, &out); err != nil {
		t.Fatalf("Expected no error for --version, got: %v", err)
	}
	if strings.TrimSpace(out.String()) != "1.2.3" {
		t.Errorf("Expected version output, got: %q", out.String())
	}
}

func TestExecute_Help(t *testing.T) {
	var out bytes.Buffer
	if err := Execute("dev", []string{"--help"}, &out); err != nil {
		t.Fatalf("Expected no error for --help, got: %v", err)
	}
	for _, sub := range []string{"serve", "search", "similar", "export"} {
		if !strings.Contains(out.String(), sub) {
			t.Errorf("Expected help to mention %q", sub)
		}
	}
}

func TestExecute_InvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown command", args: []string{"reindex"}, want: "unknown command"},
		{name: "similar without id", args: []string{"similar"}, want: "accepts 1 arg"},
		{name: "similar malformed id", args: []string{"similar", "42"}, want: "invalid property id"},
		{name: "similar bad format", args: []string{"similar", uuid.NewString(), "--format", "xml"}, want: "unsupported output format"},
		{name: "search lat only", args: []string{"search", "--lat", "34.05"}, want: "--lat and --lng"},
		{name: "export bad filter", args: []string{"export", "--beds", "many"}, want: "beds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := Execute("dev", tt.args, &out)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestRunMain_Failure(t *testing.T) {
	exitCode := -1
	runMain([]string{"estate_search", "--invalid"}, func(code int) { exitCode = code })

	if exitCode != 1 {
		t.Errorf("Expected exit code 1 for invalid flag, got: %d", exitCode)
	}
}

func TestWriteHits(t *testing.T) {
	price := 450000.0
	distance := 2.346
	page := domain.NewPage([]domain.SearchHit{
		{
			Property: domain.Property{
				ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
				Title:     "Craftsman bungalow",
				Status:    domain.PropertyStatusForSale,
				BasicInfo: domain.BasicInfo{Beds: 3},
				Pricing:   domain.Pricing{SalesPrice: &price},
				CreatedAt: time.Now(),
			},
			DistanceKm: &distance,
		},
	}, 1, 12, 1)

	var out bytes.Buffer
	if err := writeHits(&out, page); err != nil {
		t.Fatalf("writeHits: %v", err)
	}

	for _, want := range []string{"Craftsman bungalow", "450000", "2.35", "page 1/1, total 1"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out.String())
		}
	}
}
