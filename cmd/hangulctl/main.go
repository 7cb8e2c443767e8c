// hangulctl is the command-line companion for hangulkey: it composes text,
// manages the shortcut lexicon and inspects configuration.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"hangulkey/internal/config"
	"hangulkey/internal/document"
	"hangulkey/internal/ime"
	"hangulkey/internal/logging"
	"hangulkey/internal/store"
)

var (
	configPath = flag.String("config", "", "path to config file")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	args := flag.Args()[1:]
	var err error
	switch flag.Arg(0) {
	case "compose":
		err = cmdCompose(args)
	case "type":
		err = cmdType()
	case "lexicon":
		err = cmdLexicon(args)
	case "config":
		err = cmdConfig(args)
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", flag.Arg(0))
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `hangulctl - Control utility for hangulkey

Usage: hangulctl [options] <command> [args]

Commands:
  compose [-layout name] <keys>   Type keys and print the result ("<" is backspace)
  type                            Interactive composition in the terminal
  lexicon ls                      List lexicon shortcuts
  lexicon get <input>             Show one shortcut without counting a hit
  lexicon add <input> <text>      Add or replace a shortcut
  lexicon rm <input>              Remove a shortcut
  lexicon import <file.json>      Import shortcuts from a JSON array
  config show                     Print the effective configuration
  config path                     Print the config file path
  config init                     Write a default config file if none exists
  config check                    Validate the config file
  help                            Show this help message

Options:
  -config <path>  Path to config file`)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.NewLoader(*configPath).Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func cmdCompose(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("compose", flag.ContinueOnError)
	layoutName := fs.String("layout", cfg.Keyboard.Layout, "keyboard layout (dubeolsik, direct)")
	noResume := fs.Bool("no-resume", false, "never reopen committed syllables")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("usage: hangulctl compose [-layout name] <keys>")
	}

	layout, err := ime.LayoutByName(*layoutName)
	if err != nil {
		return err
	}
	if *noResume {
		cfg.Composer.ResumeCommitted = false
	}

	doc := document.New("")
	engine, err := ime.Open(doc, cfg, logging.Discard())
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := compose(engine, layout, strings.Join(fs.Args(), " ")); err != nil {
		return err
	}
	engine.Reset()
	fmt.Println(doc.String())
	return nil
}

// compose feeds keys to engine; '<' is a backspace.
func compose(engine *ime.Engine, layout *ime.Layout, keys string) error {
	for _, k := range keys {
		if k == '<' {
			engine.Backspace()
			continue
		}
		if err := engine.Commit(layout.Translate(k)); err != nil {
			return err
		}
	}
	return nil
}

// Control keys understood by the interactive mode.
const (
	keyCtrlC     = 0x03
	keyCtrlD     = 0x04
	keyCtrlU     = 0x15
	keyCtrlW     = 0x17
	keyCtrlL     = 0x0c
	keyEnter     = '\r'
	keyBackspace = 0x7f
	keyCtrlH     = 0x08
)

func cmdType() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	layout, err := ime.LayoutByName(cfg.Keyboard.Layout)
	if err != nil {
		return err
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("type needs an interactive terminal")
	}

	doc := document.New("")
	engine, err := ime.Open(doc, cfg, logging.Discard())
	if err != nil {
		return err
	}
	defer engine.Close()

	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer term.Restore(fd, state)

	fmt.Print("Type with the " + layout.Name() + " layout. Ctrl-W deletes a word, Ctrl-U a line, Ctrl-L everything, Ctrl-D quits.\r\n")
	return interact(bufio.NewReader(os.Stdin), os.Stdout, engine, doc, layout)
}

func interact(in *bufio.Reader, out io.Writer, engine *ime.Engine, doc *document.Document, layout *ime.Layout) error {
	render := func() {
		text := doc.String()
		line := text[strings.LastIndexByte(text, '\n')+1:]
		fmt.Fprintf(out, "\r\x1b[K%s", line)
	}

	for {
		r, _, err := in.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch r {
		case keyCtrlC, keyCtrlD:
			engine.Reset()
			fmt.Fprint(out, "\r\n")
			return nil
		case keyBackspace, keyCtrlH:
			engine.Backspace()
		case keyCtrlW:
			engine.DeleteWord()
		case keyCtrlU:
			engine.DeleteLine()
		case keyCtrlL:
			engine.DeleteAll()
		case keyEnter, '\n':
			engine.Reset()
			if err := engine.Commit('\n'); err != nil {
				return err
			}
			fmt.Fprint(out, "\r\n")
		default:
			if r < 0x20 {
				continue
			}
			if err := engine.Commit(layout.Translate(r)); err != nil {
				return err
			}
		}
		render()
	}
	return nil
}

func openLexicon() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.Correction.LexiconPath)
}

func cmdLexicon(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: hangulctl lexicon <ls|get|add|rm|import>")
	}

	st, err := openLexicon()
	if err != nil {
		return err
	}
	defer st.Close()

	switch args[0] {
	case "ls", "list":
		entries, err := st.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No shortcuts.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "INPUT\tTEXT\tHITS\tLAST USED")
		for _, e := range entries {
			last := "-"
			if !e.LastUsedAt.IsZero() {
				last = e.LastUsedAt.Local().Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.UserInput, e.DocumentText, e.Hits, last)
		}
		return w.Flush()

	case "get":
		if len(args) < 2 {
			return errors.New("usage: hangulctl lexicon get <input>")
		}
		e, err := st.Get(args[1])
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("no shortcut for %q", args[1])
		}
		fmt.Printf("%s -> %s (%d hits)\n", e.UserInput, e.DocumentText, e.Hits)
		return nil

	case "add":
		if len(args) < 3 {
			return errors.New("usage: hangulctl lexicon add <input> <text>")
		}
		text := strings.Join(args[2:], " ")
		if err := st.Put(store.Entry{UserInput: args[1], DocumentText: text}); err != nil {
			return err
		}
		fmt.Printf("%s -> %s\n", args[1], text)
		return nil

	case "rm", "remove":
		if len(args) < 2 {
			return errors.New("usage: hangulctl lexicon rm <input>")
		}
		removed, err := st.Delete(args[1])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("no shortcut for %q", args[1])
		}
		return nil

	case "import":
		if len(args) < 2 {
			return errors.New("usage: hangulctl lexicon import <file.json>")
		}
		entries, err := readEntries(args[1])
		if err != nil {
			return err
		}
		if err := st.Import(entries); err != nil {
			return err
		}
		fmt.Printf("Imported %d shortcuts.\n", len(entries))
		return nil

	default:
		return fmt.Errorf("unknown lexicon command: %s", args[0])
	}
}

type entryJSON struct {
	UserInput    string `json:"user_input"`
	DocumentText string `json:"document_text"`
}

func readEntries(path string) ([]store.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	entries := make([]store.Entry, 0, len(raw))
	for _, r := range raw {
		entries = append(entries, store.Entry{UserInput: r.UserInput, DocumentText: r.DocumentText})
	}
	return entries, nil
}

func cmdConfig(args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}

	switch sub {
	case "show":
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Print(cfg.String())
		return nil

	case "path":
		fmt.Println(path)
		return nil

	case "init":
		_, created, err := config.LoadOrCreate(path)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("Wrote %s\n", path)
		} else {
			fmt.Printf("%s already exists\n", path)
		}
		return nil

	case "check":
		cfg, err := config.NewLoader(path).Load()
		if err != nil {
			return err
		}
		for _, w := range config.CheckConfig(cfg).Warnings() {
			fmt.Printf("warning: %s\n", w.Error())
		}
		settings, err := logging.FromSettings(cfg.Logging, "hangulctl")
		if err != nil {
			return err
		}
		fmt.Printf("log level: %s\n", logging.LevelString(settings.Level))
		fmt.Println("OK")
		return nil

	default:
		return fmt.Errorf("unknown config command: %s", sub)
	}
}
