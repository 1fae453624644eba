package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultPath = "./config/application.yaml"
	EnvPrefix   = "MULTICAL_"
)

type Application struct {
	Listen  string  `koanf:"listen"`
	Storage Storage `koanf:"storage"`
	Layout  Layout  `koanf:"layout"`
	Google  Google  `koanf:"google"`
}

type Storage struct {
	// Driver is one of "sqlite", "postgres" or "memory".
	Driver string `koanf:"driver"`
	// Path of the SQLite database file.
	Path     string `koanf:"path"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Pass     string `koanf:"pass"`
	Name     string `koanf:"name"`
	Schema   string `koanf:"schema"`
	Autosave bool   `koanf:"autosave"`
	// OnLoadError is "fail" or "default".
	OnLoadError string `koanf:"onloaderror"`
}

type Layout struct {
	Subdivisions int `koanf:"subdivisions"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
	TokenFile    string `koanf:"tokenfile"`
}

func Defaults() Application {
	return Application{
		Listen: ":8181",
		Storage: Storage{
			Driver:      "sqlite",
			Path:        "multical.db",
			Host:        "localhost",
			Port:        5432,
			User:        "multical",
			Name:        "multical",
			Schema:      "multical",
			Autosave:    true,
			OnLoadError: "fail",
		},
		Layout: Layout{
			Subdivisions: 4,
		},
		Google: Google{
			TokenFile: "google-token.json",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, EnvPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
