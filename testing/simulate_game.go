package main

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/tatianab/scottfree/internal/config"
	"github.com/tatianab/scottfree/internal/engine"
	"github.com/tatianab/scottfree/internal/loader"
	"github.com/tatianab/scottfree/internal/models"
	"github.com/tatianab/scottfree/internal/parser"
)

//go:embed prompts/next_command.txt
var nextCommandPrompt string

const (
	maxTurns   = 30
	historyLen = 2000
)

// transcript is the engine's output and effect sink.
type transcript struct {
	strings.Builder
	over bool
}

func (t *transcript) Emit(text string) { t.WriteString(text) }

func (t *transcript) Effect(e engine.Effect) {
	switch e {
	case engine.EffectGameOver:
		t.over = true
	case engine.EffectClearScreen, engine.EffectDelay:
	default:
		t.WriteString(fmt.Sprintf("[%s is not available here]\n", e))
	}
}

func (t *transcript) take() string {
	s := t.String()
	t.Reset()
	return s
}

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		log.Fatal(err)
	}
	if len(os.Args) > 1 {
		cfg.GamePath = os.Args[1]
	}
	closeLog, err := cfg.SetupLogging()
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()

	opts, err := cfg.LoaderOptions()
	if err != nil {
		log.Fatal(err)
	}
	w, err := loader.LoadFile(cfg.GamePath, opts...)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", cfg.GamePath, err)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create player client: %v", err)
	}
	defer client.Close()
	player := client.GenerativeModel("gemini-2.5-flash")

	tmpl, err := template.New("next_command").Parse(nextCommandPrompt)
	if err != nil {
		log.Fatal(err)
	}

	out := &transcript{}
	eopts := cfg.EngineOptions()
	eopts.Output, eopts.Effects = out, out
	eng := engine.New(w, eopts)
	p := parser.New(w)

	eng.Prologue()
	history := out.take()
	fmt.Printf("--- %s ---\n%s\n", w.Title, history)

	for turn := 1; turn <= maxTurns && !out.over; turn++ {
		fmt.Printf("--- Turn %d ---\n", turn)
		command := nextCommand(ctx, player, tmpl, w, eng.RoomDescription(), history)
		fmt.Printf("Player: %s\n", command)

		cmds, err := p.Parse(command)
		if perr, ok := err.(*parser.Error); ok {
			out.Emit(perr.Text(eng.Messages()))
		} else if err != nil {
			log.Fatal(err)
		} else {
			eng.Play(cmds)
		}

		result := out.take()
		fmt.Printf("Game: %s\n", result)
		history += "> " + command + "\n" + result
		if len(history) > historyLen {
			history = history[len(history)-historyLen:]
		}
	}
	if out.over {
		fmt.Println("Game Ended.")
	}
	for _, d := range eng.Diagnostics() {
		log.Warnf("row %d abandoned at code %d: %v", d.Row, d.Code, d.Err)
	}
}

func nextCommand(ctx context.Context, model *genai.GenerativeModel, tmpl *template.Template, w *models.World, room, history string) string {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		Title, Verbs, Nouns, Room, History string
	}{
		Title:   w.Title,
		Verbs:   vocabulary(w.Verbs),
		Nouns:   vocabulary(w.Nouns),
		Room:    room,
		History: history,
	})
	if err != nil {
		log.Fatal(err)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(buf.String()))
	if err != nil {
		log.Warnf("Gemini: %v", err)
		return "LOOK"
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "LOOK"
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "LOOK"
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(text)), "\n")
	return strings.Trim(line, "`\"' ")
}

// vocabulary lists the plain words of a verb or noun table.
func vocabulary(words []string) string {
	var out []string
	for i, word := range words {
		if i == 0 || word == "" || word == "." || strings.HasPrefix(word, "*") {
			continue
		}
		out = append(out, word)
	}
	return strings.Join(out, ", ")
}
