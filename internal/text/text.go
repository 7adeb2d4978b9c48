package text

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/DaanHessen/valentine-tui/internal/engine"
)

// Script holds every line shown during the presentation. Intro entries are
// markdown, one per intro step. {name} and {nickname} are substituted.
type Script struct {
	Intro         []string `yaml:"intro"`
	IntroContinue string   `yaml:"intro_continue"`

	CollageTitle    string `yaml:"collage_title"`
	CollageSubtitle string `yaml:"collage_subtitle"`
	CollageContinue string `yaml:"collage_continue"`

	EnvelopeLabel string `yaml:"envelope_label"`
	LetterHeading string `yaml:"letter_heading"`
	Letter        string `yaml:"letter"`
	Question      string `yaml:"question"`
	AcceptLabel   string `yaml:"accept_label"`

	CelebrationTitle    string `yaml:"celebration_title"`
	CelebrationSubtitle string `yaml:"celebration_subtitle"`
	CelebrationNote     string `yaml:"celebration_note"`
	ReplayLabel         string `yaml:"replay_label"`
}

var defaultScript = Script{
	Intro: []string{
		"# Hey **{name}**\n\nMy {nickname}, my Babudya...",
		"## It's Valentine's Day!!! :D",
		"> Hey Saheli... I know I messed up. So this is me trying to do it the right way.",
		"I know you're angry with me... and #NYK-333547161-2143556",
		"Asking on a call wasn't enough effort for someone as special as you.",
		"I wanted to meet you but your parents were there...\n\n*So I stopped and thought...*",
		"I wanted to do something **special**.\n\n*Because you are not ordinary to me.*",
		"Even **Banku** agrees you deserve better! 🐱",
	},
	IntroContinue:       "See Our Memories →",
	CollageTitle:        "Our Story in Pictures 📸",
	CollageSubtitle:     "Here are some of our memories: the stupid, the cute, the lovely.",
	CollageContinue:     "One last thing from my heart... →",
	EnvelopeLabel:       "💌 For {name}",
	LetterHeading:       "My Dearest {name}...",
	Letter:              "You make my world brighter, my smile wider, and my heart fuller. I promise to always make an effort, to surprise you, and to love you more every day.",
	Question:            "Will you be my Valentine **& Prom Partner?** 🌹",
	AcceptLabel:         "YES! I'd Love To! 💕",
	CelebrationTitle:    "She Said YES!",
	CelebrationSubtitle: "I love you so much, {name}! 💕",
	CelebrationNote:     "Ek Kissy to my Gulab-jamun!! ❤️",
	ReplayLabel:         "Replay Surprise ↺",
}

// Default returns the built-in script personalised for name and nickname.
func Default(name, nickname string) Script {
	return defaultScript.personalize(name, nickname)
}

// Load reads a YAML script. Fields left out stay empty; combine with WithFallback.
func Load(path, name, nickname string) (Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Script{}, errors.Wrapf(err, "read script %s", path)
	}
	var s Script
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Script{}, errors.Wrapf(err, "parse script %s", path)
	}
	if len(s.Intro) > engine.IntroSteps {
		return Script{}, errors.Errorf("script %s has %d intro steps, at most %d allowed", path, len(s.Intro), engine.IntroSteps)
	}
	return s.personalize(name, nickname), nil
}

// WithFallback fills every empty field of s from f.
func (s Script) WithFallback(f Script) Script {
	out := s
	intro := make([]string, engine.IntroSteps)
	for i := range intro {
		if i < len(s.Intro) && strings.TrimSpace(s.Intro[i]) != "" {
			intro[i] = s.Intro[i]
		} else if i < len(f.Intro) {
			intro[i] = f.Intro[i]
		}
	}
	out.Intro = intro
	pick := func(a, b string) string {
		if strings.TrimSpace(a) == "" {
			return b
		}
		return a
	}
	out.IntroContinue = pick(s.IntroContinue, f.IntroContinue)
	out.CollageTitle = pick(s.CollageTitle, f.CollageTitle)
	out.CollageSubtitle = pick(s.CollageSubtitle, f.CollageSubtitle)
	out.CollageContinue = pick(s.CollageContinue, f.CollageContinue)
	out.EnvelopeLabel = pick(s.EnvelopeLabel, f.EnvelopeLabel)
	out.LetterHeading = pick(s.LetterHeading, f.LetterHeading)
	out.Letter = pick(s.Letter, f.Letter)
	out.Question = pick(s.Question, f.Question)
	out.AcceptLabel = pick(s.AcceptLabel, f.AcceptLabel)
	out.CelebrationTitle = pick(s.CelebrationTitle, f.CelebrationTitle)
	out.CelebrationSubtitle = pick(s.CelebrationSubtitle, f.CelebrationSubtitle)
	out.CelebrationNote = pick(s.CelebrationNote, f.CelebrationNote)
	out.ReplayLabel = pick(s.ReplayLabel, f.ReplayLabel)
	return out
}

// IntroStep returns the markdown for step, or "" when out of range.
func (s Script) IntroStep(step int) string {
	if step < 0 || step >= len(s.Intro) {
		return ""
	}
	return s.Intro[step]
}

func (s Script) personalize(name, nickname string) Script {
	r := strings.NewReplacer("{name}", name, "{nickname}", nickname)
	out := s
	out.Intro = make([]string, len(s.Intro))
	for i, line := range s.Intro {
		out.Intro[i] = r.Replace(line)
	}
	out.IntroContinue = r.Replace(s.IntroContinue)
	out.CollageTitle = r.Replace(s.CollageTitle)
	out.CollageSubtitle = r.Replace(s.CollageSubtitle)
	out.CollageContinue = r.Replace(s.CollageContinue)
	out.EnvelopeLabel = r.Replace(s.EnvelopeLabel)
	out.LetterHeading = r.Replace(s.LetterHeading)
	out.Letter = r.Replace(s.Letter)
	out.Question = r.Replace(s.Question)
	out.AcceptLabel = r.Replace(s.AcceptLabel)
	out.CelebrationTitle = r.Replace(s.CelebrationTitle)
	out.CelebrationSubtitle = r.Replace(s.CelebrationSubtitle)
	out.CelebrationNote = r.Replace(s.CelebrationNote)
	out.ReplayLabel = r.Replace(s.ReplayLabel)
	return out
}

// Renderer turns script markdown into terminal output.
type Renderer struct {
	tr *glamour.TermRenderer
}

// NewRenderer builds a glamour renderer. style "auto" detects the terminal background.
func NewRenderer(style string, width int) (*Renderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width), glamour.WithEmoji()}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "glamour renderer")
	}
	return &Renderer{tr: tr}, nil
}

// Render returns md rendered, or md unchanged when rendering fails or r is nil.
func (r *Renderer) Render(md string) string {
	if r == nil || r.tr == nil {
		return md
	}
	out, err := r.tr.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
