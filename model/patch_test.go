package model

import (
	"errors"
	"testing"
)

func rawBody(pairs map[string]string) map[string]RawJSON {
	body := make(map[string]RawJSON, len(pairs))
	for k, v := range pairs {
		body[k] = RawJSON(v)
	}
	return body
}

func TestParsePlaylistPatch(t *testing.T) {
	tests := []struct {
		name      string
		body      map[string]string
		wantCols  []string
		wantError bool
	}{
		{
			name:     "empty body",
			body:     map[string]string{},
			wantCols: nil,
		},
		{
			name:     "unknown keys ignored",
			body:     map[string]string{"foo": `"bar"`, "id": `"x"`},
			wantCols: nil,
		},
		{
			name:     "fixed column order",
			body:     map[string]string{"compositor": `"Maria"`, "titulo": `"Caboclo"`},
			wantCols: []string{"titulo", "compositor"},
		},
		{
			name:     "null optional column",
			body:     map[string]string{"subtitulo": `null`},
			wantCols: []string{"subtitulo"},
		},
		{
			name:      "null titulo rejected",
			body:      map[string]string{"titulo": `null`},
			wantError: true,
		},
		{
			name:      "wrong type rejected",
			body:      map[string]string{"imagem_url": `42`},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch, err := ParsePlaylistPatch(rawBody(tt.body))
			if tt.wantError {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(patch) != len(tt.wantCols) {
				t.Fatalf("expected %d assignments, got %d", len(tt.wantCols), len(patch))
			}
			for i, col := range tt.wantCols {
				if patch[i].Column != col {
					t.Errorf("assignment %d: expected %s, got %s", i, col, patch[i].Column)
				}
			}
		})
	}
}

func TestParsePontoPatchDetach(t *testing.T) {
	patch, err := ParsePontoPatch(rawBody(map[string]string{"playlist_id": "null", "duracao": "93"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clause, args := patch.SetClause()
	if clause != "playlist_id = ?, duracao = ?" {
		t.Errorf("unexpected set clause %q", clause)
	}
	if args[0] != nil {
		t.Errorf("expected nil playlist_id, got %v", args[0])
	}
	if args[1] != 93 {
		t.Errorf("expected duracao 93, got %v", args[1])
	}
	if !patch.Has("duracao") || patch.Has("titulo") {
		t.Error("Has() reports wrong columns")
	}
}

func TestParsePontoPatchNegativeDuration(t *testing.T) {
	_, err := ParsePontoPatch(rawBody(map[string]string{"duracao": "-1"}))
	if err == nil {
		t.Fatal("expected error for negative duration")
	}
}
