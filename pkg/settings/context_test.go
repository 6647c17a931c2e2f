package settings

import (
	"context"
	"testing"
)

func TestFromContext(t *testing.T) {
	stored := &Run{ServerAddress: "/tmp/nvim.sock", ConfigPath: "nvtree.yaml", NoColor: true}

	tests := []struct {
		name     string
		setupCtx func() context.Context
		wantOk   bool
		want     *Run
	}{
		{
			name:     "context_with_settings",
			setupCtx: func() context.Context { return IntoContext(context.Background(), stored) },
			wantOk:   true,
			want:     stored,
		},
		{
			name:     "context_without_settings",
			setupCtx: context.Background,
			wantOk:   false,
		},
		{
			name:     "context_with_nil_settings",
			setupCtx: func() context.Context { return IntoContext(context.Background(), nil) },
			wantOk:   false,
		},
		{
			name: "context_with_wrong_type",
			setupCtx: func() context.Context {
				return context.WithValue(context.Background(), runContextKey, "wrong type")
			},
			wantOk: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromContext(tt.setupCtx())
			if ok != tt.wantOk {
				t.Fatalf("FromContext() ok = %v; want %v", ok, tt.wantOk)
			}
			if got != tt.want {
				t.Errorf("FromContext() = %+v; want %+v", got, tt.want)
			}
		})
	}
}

func TestFromContextOrDefault(t *testing.T) {
	got := FromContextOrDefault(context.Background())
	if got == nil || *got != *NewCliParams() {
		t.Fatalf("FromContextOrDefault() without settings = %+v; want CLI defaults", got)
	}

	stored := &Run{ServerAddress: "127.0.0.1:6666"}
	got = FromContextOrDefault(IntoContext(context.Background(), stored))
	if got != stored {
		t.Errorf("FromContextOrDefault() returned %p; want stored %p", got, stored)
	}
}
