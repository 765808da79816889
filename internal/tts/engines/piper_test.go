package engines

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeModel(t *testing.T, name, config string) string {
	t.Helper()
	dir := t.TempDir()
	modelPath := filepath.Join(dir, name)
	if err := os.WriteFile(modelPath, []byte("fake model"), 0o644); err != nil {
		t.Fatal(err)
	}
	if config != "" {
		if err := os.WriteFile(modelPath+".json", []byte(config), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return modelPath
}

func TestPiperEngine_NewPiperEngine(t *testing.T) {
	modelPath := writeModel(t, "it_IT-riccardo-x_low.onnx", "")

	tests := []struct {
		name    string
		config  PiperConfig
		wantErr bool
	}{
		{name: "valid config", config: PiperConfig{ModelPath: modelPath}},
		{name: "missing model path", config: PiperConfig{}, wantErr: true},
		{name: "non-existent model", config: PiperConfig{ModelPath: "/non/existent/model.onnx"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewPiperEngine(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewPiperEngine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var pe *PiperError
				if !errors.As(err, &pe) || pe.Type != "config" {
					t.Errorf("Expected a config PiperError, got %v", err)
				}
				return
			}
			defer engine.Close()
		})
	}
}

func TestPiperEngine_ModelConfig(t *testing.T) {
	modelPath := writeModel(t, "it_IT-paola-medium.onnx",
		`{"audio": {"sample_rate": 16000}, "language": {"code": "it_IT"}}`)

	engine, err := NewPiperEngine(PiperConfig{ModelPath: modelPath})
	if err != nil {
		t.Fatalf("NewPiperEngine failed: %v", err)
	}

	if got := engine.GetInfo().SampleRate; got != 16000 {
		t.Errorf("Expected sample rate from model config, got %d", got)
	}

	voices := engine.Voices()
	if len(voices) != 1 {
		t.Fatalf("Expected 1 voice, got %d", len(voices))
	}
	if voices[0].Lang != "it-IT" {
		t.Errorf("Expected lang it-IT, got %q", voices[0].Lang)
	}
	if !strings.Contains(voices[0].Name, "paola") || !strings.Contains(voices[0].Name, "Italian") {
		t.Errorf("Unexpected voice name %q", voices[0].Name)
	}
	if voices[0].ID != modelPath {
		t.Errorf("Voice ID should be the model path, got %q", voices[0].ID)
	}
}

func TestPiperEngine_BadModelConfig(t *testing.T) {
	modelPath := writeModel(t, "it_IT-paola-medium.onnx", "{not json")
	if _, err := NewPiperEngine(PiperConfig{ModelPath: modelPath}); err == nil {
		t.Error("Expected error for unreadable model config")
	}
}

func TestPiperEngine_GetInfo(t *testing.T) {
	engine, err := NewPiperEngine(PiperConfig{ModelPath: writeModel(t, "it_IT-riccardo-x_low.onnx", "")})
	if err != nil {
		t.Fatalf("NewPiperEngine failed: %v", err)
	}

	info := engine.GetInfo()
	if info.Name != "piper" {
		t.Errorf("Expected name 'piper', got %s", info.Name)
	}
	if info.SampleRate != 22050 {
		t.Errorf("Expected sample rate 22050, got %d", info.SampleRate)
	}
	if info.Channels != 1 || info.BitDepth != 16 {
		t.Errorf("Expected 16-bit mono, got %d channels %d bits", info.Channels, info.BitDepth)
	}
	if info.IsOnline {
		t.Error("Piper should be offline engine")
	}
}

func TestPiperEngine_Synthesize(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	stdinFile := filepath.Join(t.TempDir(), "stdin")
	binary := fakeBinary(t, "piper", `echo "$@" > `+argsFile+`
cat > `+stdinFile+`
printf 'PCMDATA'
`)

	engine, err := NewPiperEngine(PiperConfig{
		Binary:    binary,
		ModelPath: writeModel(t, "it_IT-riccardo-x_low.onnx", `{"audio": {"sample_rate": 22050}}`),
		Speaker:   "2",
	})
	if err != nil {
		t.Fatalf("NewPiperEngine failed: %v", err)
	}

	audio, err := engine.Synthesize(context.Background(), "Buongiorno, come stai?", 0.5)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(audio) != "PCMDATA" {
		t.Errorf("Unexpected audio %q", audio)
	}

	if got := readFile(t, stdinFile); got != "Buongiorno, come stai?" {
		t.Errorf("Text should be passed on stdin, got %q", got)
	}
	args := readFile(t, argsFile)
	for _, want := range []string{"--output-raw", "--length-scale 2.00", "--speaker 2", "--config"} {
		if !strings.Contains(args, want) {
			t.Errorf("Args %q should contain %q", args, want)
		}
	}
}

func TestPiperEngine_TextValidation(t *testing.T) {
	engine, err := NewPiperEngine(PiperConfig{
		Binary:    "frasi-test-no-such-piper",
		ModelPath: writeModel(t, "it_IT-riccardo-x_low.onnx", ""),
	})
	if err != nil {
		t.Fatalf("NewPiperEngine failed: %v", err)
	}

	if _, err := engine.Synthesize(context.Background(), "   ", 1.0); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Expected ErrEmptyText, got %v", err)
	}
	if _, err := engine.Synthesize(context.Background(), strings.Repeat("a", 5001), 1.0); err == nil {
		t.Error("Expected error for text over the size limit")
	}
	if _, err := engine.Synthesize(context.Background(), "Ciao", 1.0); err == nil {
		t.Error("Expected error for missing binary")
	}
}

func TestPiperEngine_Failure(t *testing.T) {
	binary := fakeBinary(t, "piper", `cat > /dev/null
echo "model broken" >&2
exit 3
`)
	engine, err := NewPiperEngine(PiperConfig{Binary: binary, ModelPath: writeModel(t, "m.onnx", "")})
	if err != nil {
		t.Fatalf("NewPiperEngine failed: %v", err)
	}

	_, err = engine.Synthesize(context.Background(), "Ciao", 1.0)
	if err == nil {
		t.Fatal("Expected synthesis error")
	}
	if !strings.Contains(err.Error(), "model broken") {
		t.Errorf("Error should include stderr, got %v", err)
	}
}

func TestPiperEngine_ContextCancellation(t *testing.T) {
	binary := fakeBinary(t, "piper", "sleep 5\n")
	engine, err := NewPiperEngine(PiperConfig{Binary: binary, ModelPath: writeModel(t, "m.onnx", "")})
	if err != nil {
		t.Fatalf("NewPiperEngine failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = engine.Synthesize(ctx, "Ciao", 1.0)
	if err == nil {
		t.Fatal("Expected error after cancellation")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Cancellation took too long: %v", elapsed)
	}
}
