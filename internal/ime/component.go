package ime

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"hangulkey/internal/config"
)

// Version is reported to IBus in the component description.
const Version = "1.0.0"

type ibusComponent struct {
	XMLName     xml.Name          `xml:"component"`
	Name        string            `xml:"name"`
	Description string            `xml:"description"`
	Exec        string            `xml:"exec"`
	Version     string            `xml:"version"`
	Author      string            `xml:"author"`
	License     string            `xml:"license"`
	TextDomain  string            `xml:"textdomain"`
	Engines     []componentEngine `xml:"engines>engine"`
}

type componentEngine struct {
	Name        string `xml:"name"`
	Language    string `xml:"language"`
	License     string `xml:"license"`
	Author      string `xml:"author"`
	Layout      string `xml:"layout"`
	LongName    string `xml:"longname"`
	Description string `xml:"description"`
	Rank        int    `xml:"rank"`
	Symbol      string `xml:"symbol"`
}

// ComponentXML renders the IBus component file that launches exec.
func ComponentXML(cfg config.IBusConfig, exec string) ([]byte, error) {
	c := ibusComponent{
		Name:        cfg.BusName,
		Description: "Hangul input method",
		Exec:        exec + " -ibus",
		Version:     Version,
		Author:      "hangulkey",
		License:     "MIT",
		TextDomain:  "hangulkey",
		Engines: []componentEngine{{
			Name:        cfg.EngineName,
			Language:    "ko",
			License:     "MIT",
			Author:      "hangulkey",
			Layout:      "us",
			LongName:    "Hangul (hangulkey)",
			Description: "Dubeolsik Hangul composition",
			Rank:        50,
			Symbol:      "한",
		}},
	}

	data, err := xml.MarshalIndent(c, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode component: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}

// ComponentPath returns where the user's IBus component file lives.
func ComponentPath(engineName string) (string, error) {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "ibus", "component", engineName+".xml"), nil
}

// InstallComponent writes the component file for exec.
func InstallComponent(cfg config.IBusConfig, exec string) (string, error) {
	path, err := ComponentPath(cfg.EngineName)
	if err != nil {
		return "", err
	}
	data, err := ComponentXML(cfg, exec)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create component directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write component: %w", err)
	}
	return path, nil
}

// UninstallComponent removes the component file.
func UninstallComponent(cfg config.IBusConfig) error {
	path, err := ComponentPath(cfg.EngineName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
