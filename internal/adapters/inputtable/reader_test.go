package inputtable

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

func TestLoad_CSV(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []domain.WorkItem
	}{
		{
			name:    "english headers",
			content: "name,city,email\nAna López,Madrid,ana@example.com\nBob,Paris,bob@example.com\n",
			want: []domain.WorkItem{
				{Name: "Ana López", City: "Madrid", Email: "ana@example.com"},
				{Name: "Bob", City: "Paris", Email: "bob@example.com"},
			},
		},
		{
			name:    "spanish headers and blank row",
			content: "Nombre,Ciudad,email\nLuis,Sevilla,luis@example.com\n,,\nMarta, Bilbao ,\n",
			want: []domain.WorkItem{
				{Name: "Luis", City: "Sevilla", Email: "luis@example.com"},
				{Name: "Marta", City: "Bilbao"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "clientes.csv")
			os.WriteFile(path, []byte(tt.content), 0644)

			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d items, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("item %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoad_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clientes.xlsx")
	f := excelize.NewFile()
	f.SetSheetRow("Sheet1", "A1", &[]any{"Nombre", "Ciudad", "email"})
	f.SetSheetRow("Sheet1", "A2", &[]any{"Ana", "Madrid", "ana@example.com"})
	f.SetSheetRow("Sheet1", "A3", &[]any{"Bob", "Paris", "bob@example.com"})
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Ana" || got[1].City != "Paris" {
		t.Errorf("unexpected items: %+v", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	noCity := filepath.Join(dir, "nocity.csv")
	os.WriteFile(noCity, []byte("name,email\nAna,ana@example.com\n"), 0644)

	for _, path := range []string{filepath.Join(dir, "missing.csv"), noCity} {
		_, err := Load(path)
		if !errors.Is(err, domain.ErrParse) {
			t.Errorf("Load(%s) = %v, want parse error", filepath.Base(path), err)
		}
	}
}
