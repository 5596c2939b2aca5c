package browser

import (
	"errors"
	"reflect"
	"testing"
)

// mockCommander records the last command for testing
type mockCommander struct {
	lastCommand string
	lastArgs    []string
	err         error
}

func (m *mockCommander) Start(name string, args ...string) error {
	m.lastCommand = name
	m.lastArgs = args
	return m.err
}

const editorURL = "http://localhost:8081/"

func TestOpenWithCommander_Platforms(t *testing.T) {
	tests := []struct {
		goos     string
		wantCmd  string
		wantArgs []string
	}{
		{"linux", "xdg-open", []string{editorURL}},
		{"freebsd", "xdg-open", []string{editorURL}},
		{"darwin", "open", []string{editorURL}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", editorURL}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			mock := &mockCommander{}
			if err := OpenWithCommander(editorURL, mock, tt.goos, ""); err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if mock.lastCommand != tt.wantCmd {
				t.Errorf("expected command %q, got %q", tt.wantCmd, mock.lastCommand)
			}
			if !reflect.DeepEqual(mock.lastArgs, tt.wantArgs) {
				t.Errorf("expected args %v, got %v", tt.wantArgs, mock.lastArgs)
			}
		})
	}
}

func TestOpenWithCommander_BrowserEnvWins(t *testing.T) {
	mock := &mockCommander{}
	if err := OpenWithCommander(editorURL, mock, "linux", "firefox --new-tab"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if mock.lastCommand != "firefox" {
		t.Errorf("expected firefox, got %q", mock.lastCommand)
	}
	if want := []string{"--new-tab", editorURL}; !reflect.DeepEqual(mock.lastArgs, want) {
		t.Errorf("expected args %v, got %v", want, mock.lastArgs)
	}

	// Blank $BROWSER falls through to the platform opener
	if err := OpenWithCommander(editorURL, mock, "darwin", "   "); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if mock.lastCommand != "open" {
		t.Errorf("expected open, got %q", mock.lastCommand)
	}
}

func TestOpenWithCommander_UnsupportedPlatform(t *testing.T) {
	mock := &mockCommander{}

	err := OpenWithCommander(editorURL, mock, "plan9", "")
	if err == nil {
		t.Fatal("expected error for unsupported platform")
	}
	if mock.lastCommand != "" {
		t.Errorf("expected no command to be run, got %q", mock.lastCommand)
	}
}

func TestOpenWithCommander_CommandError(t *testing.T) {
	boom := errors.New("command failed")
	mock := &mockCommander{err: boom}

	if err := OpenWithCommander(editorURL, mock, "linux", ""); !errors.Is(err, boom) {
		t.Errorf("expected command error, got %v", err)
	}
}

func TestOpen_UsesDefaultCommander(t *testing.T) {
	originalCommander := defaultCommander
	defer func() { defaultCommander = originalCommander }()
	t.Setenv("BROWSER", "stub-browser")

	mock := &mockCommander{}
	defaultCommander = mock

	if err := Open(editorURL); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if mock.lastCommand != "stub-browser" {
		t.Errorf("expected stub-browser, got %q", mock.lastCommand)
	}
}

func TestPlotURL(t *testing.T) {
	tests := []struct {
		base, plotID, want string
	}{
		{"http://localhost:8081/", "", "http://localhost:8081/"},
		{"http://localhost:8081", "abc123", "http://localhost:8081/?plot=abc123"},
		{"http://10.0.0.2:8081/", "a b", "http://10.0.0.2:8081/?plot=a+b"},
	}
	for _, tt := range tests {
		if got := PlotURL(tt.base, tt.plotID); got != tt.want {
			t.Errorf("PlotURL(%q, %q) = %q, want %q", tt.base, tt.plotID, got, tt.want)
		}
	}
}

func TestRealCommander_Start(t *testing.T) {
	commander := RealCommander{}

	if err := commander.Start("nonexistent-command-xyz-123"); err == nil {
		t.Error("expected error for nonexistent command, got nil")
	}
}
