package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrVarNotFound is returned when a variable is not in the vars file
var ErrVarNotFound = errors.New("variable not found")

// varsFileEnv overrides the location of the vars file
const varsFileEnv = "DESKCTL_VARS_FILE"

// GetVarsFilePath returns the path of the user variables file,
// ~/.deskctl/vars.txt unless DESKCTL_VARS_FILE is set.
func GetVarsFilePath() (string, error) {
	if path := os.Getenv(varsFileEnv); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".deskctl", "vars.txt"), nil
}

// LoadVarsFromFile reads the vars file. A missing file is empty.
func LoadVarsFromFile() (map[string]string, error) {
	path, err := GetVarsFilePath()
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	vars, err := parseVars(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vars, nil
}

// parseVars reads name=value lines. Blank lines and # comments are skipped;
// the value keeps everything after the first '='.
func parseVars(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		vars[strings.TrimSpace(name)] = value
	}
	return vars, scanner.Err()
}

// SaveVarsToFile replaces the vars file. The write goes to a temporary
// file first so a crash never leaves a truncated file behind.
func SaveVarsToFile(vars map[string]string) error {
	path, err := GetVarsFilePath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".vars-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, name := range ListVarNames(vars) {
		fmt.Fprintf(w, "%s=%s\n", name, vars[name])
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func GetVar(name string) (string, error) {
	vars, err := LoadVarsFromFile()
	if err != nil {
		return "", err
	}
	value, ok := vars[name]
	if !ok {
		return "", fmt.Errorf("%w: '%s'", ErrVarNotFound, name)
	}
	return value, nil
}

// SetVar stores a value. Names follow the same rules as variable blocks.
func SetVar(name, value string) error {
	if !toolNamePattern.MatchString(name) {
		return fmt.Errorf("invalid variable name '%s'", name)
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("variable '%s': value must be a single line", name)
	}
	vars, err := LoadVarsFromFile()
	if err != nil {
		return err
	}
	vars[name] = value
	return SaveVarsToFile(vars)
}

func DeleteVar(name string) error {
	vars, err := LoadVarsFromFile()
	if err != nil {
		return err
	}
	if _, ok := vars[name]; !ok {
		return fmt.Errorf("%w: '%s'", ErrVarNotFound, name)
	}
	delete(vars, name)
	return SaveVarsToFile(vars)
}

// ListVars returns the names in the vars file, sorted
func ListVars() ([]string, error) {
	vars, err := LoadVarsFromFile()
	if err != nil {
		return nil, err
	}
	return ListVarNames(vars), nil
}

// ListVarNames returns the names of vars, sorted
func ListVarNames(vars map[string]string) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveVariableValue returns the effective value for a variable.
// Priority: environment > vars.txt > default from config
func ResolveVariableValue(v *Variable) (string, error) {
	if value, ok := os.LookupEnv(v.EnvName()); ok {
		return value, nil
	}

	fileVars, err := LoadVarsFromFile()
	if err != nil {
		return "", err
	}

	if fileValue, ok := fileVars[v.Name]; ok {
		return fileValue, nil
	}

	return v.Default, nil
}
