package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gethiox/stradella/internal/pkg/logger"
	"github.com/gethiox/stradella/internal/pkg/stradella"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var log = logger.GetLogger()

var UnsupportedFormat = errors.New("unsupported profile format")

type Chord struct {
	Inversion       int  `yaml:"inversion" toml:"inversion"`
	LeftAddsSeventh bool `yaml:"left_adds_seventh" toml:"left_adds_seventh"`
	RightAddsNinth  bool `yaml:"right_adds_ninth" toml:"right_adds_ninth"`
}

type Octaves struct {
	Counterbass int `yaml:"counterbass" toml:"counterbass"`
	Bass        int `yaml:"bass" toml:"bass"`
	Major       int `yaml:"major" toml:"major"`
	Minor       int `yaml:"minor" toml:"minor"`
	Dom7        int `yaml:"dom7" toml:"dom7"`
	Dim7        int `yaml:"dim7" toml:"dim7"`
}

// Profile is a file representation of a voicing.
type Profile struct {
	Name               string  `yaml:"name" toml:"name"`
	Counterbass        string  `yaml:"counterbass" toml:"counterbass"`
	InversionDirection string  `yaml:"inversion_direction" toml:"inversion_direction"`
	Octave             Octaves `yaml:"octave" toml:"octave"`
	Major              Chord   `yaml:"major" toml:"major"`
	Minor              Chord   `yaml:"minor" toml:"minor"`
}

// Voicing converts profile into validated voicing.
func (p Profile) Voicing() (stradella.Voicing, error) {
	interval, err := stradella.ParseCounterbassInterval(p.Counterbass)
	if err != nil {
		return stradella.Voicing{}, fmt.Errorf("counterbass: %w", err)
	}
	direction, err := stradella.ParseInversionDirection(p.InversionDirection)
	if err != nil {
		return stradella.Voicing{}, fmt.Errorf("inversion_direction: %w", err)
	}

	v := stradella.Voicing{
		Major:       chordVoicing(p.Major),
		Minor:       chordVoicing(p.Minor),
		Counterbass: interval,
		Direction:   direction,
	}
	v.Octave[stradella.Counterbass] = p.Octave.Counterbass
	v.Octave[stradella.Bass] = p.Octave.Bass
	v.Octave[stradella.Major] = p.Octave.Major
	v.Octave[stradella.Minor] = p.Octave.Minor
	v.Octave[stradella.Dominant7] = p.Octave.Dom7
	v.Octave[stradella.Diminished7] = p.Octave.Dim7

	err = v.Validate()
	if err != nil {
		return stradella.Voicing{}, err
	}
	return v, nil
}

func chordVoicing(c Chord) stradella.ChordVoicing {
	return stradella.ChordVoicing{
		Inversion:       c.Inversion,
		LeftAddsSeventh: c.LeftAddsSeventh,
		RightAddsNinth:  c.RightAddsNinth,
	}
}

// ParseData decodes profile, format is picked by file extension (yaml, yml, toml).
func ParseData(data []byte, ext string) (Profile, error) {
	var p Profile

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		d := yaml.NewDecoder(bytes.NewReader(data))
		d.KnownFields(true)
		err := d.Decode(&p)
		if err != nil {
			return Profile{}, fmt.Errorf("parsing yaml failed: %w", err)
		}
	case "toml":
		d := toml.NewDecoder(bytes.NewReader(data))
		d.DisallowUnknownFields()
		err := d.Decode(&p)
		if err != nil {
			return Profile{}, fmt.Errorf("parsing toml failed: %w", err)
		}
	default:
		return Profile{}, fmt.Errorf("%w: \"%s\"", UnsupportedFormat, ext)
	}

	return p, nil
}

// Load reads a single profile file, name defaults to file name without extension.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}

	p, err := ParseData(data, filepath.Ext(path))
	if err != nil {
		return Profile{}, err
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// LoadDirectory reads every profile in the directory, broken files are logged and skipped.
func LoadDirectory(root string) (map[string]Profile, error) {
	profiles := make(map[string]Profile)

	err := filepath.Walk(root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		switch strings.ToLower(filepath.Ext(info.Name())) {
		case ".yaml", ".yml", ".toml":
		default:
			return nil
		}

		p, err := Load(path)
		if err != nil {
			log.Info(fmt.Sprintf("profile %s load failed: %s", info.Name(), err), logger.Warning)
			return nil
		}
		_, err = p.Voicing()
		if err != nil {
			log.Info(fmt.Sprintf("profile %s is invalid: %s", info.Name(), err), logger.Warning)
			return nil
		}
		profiles[p.Name] = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk failed: %w", err)
	}
	return profiles, nil
}
