package chain

import (
	"fmt"
	"slices"
	"strings"
)

// Package is a resolved dependency exposing contract templates
type Package struct {
	Name      string
	Version   string
	Templates []string
}

// ID returns name@version
func (p *Package) ID() string {
	return p.Name + "@" + p.Version
}

// Template returns the qualified template id for contract, e.g.
// yearn/yearn-vaults@0.4.3:Vault
func (p *Package) Template(contract string) (string, error) {
	if !slices.Contains(p.Templates, contract) {
		return "", fmt.Errorf("package %s has no contract %q", p.ID(), contract)
	}
	return p.ID() + ":" + contract, nil
}

// SplitTemplate splits a qualified template id into package id and contract.
// Base templates have an empty package id.
func SplitTemplate(template string) (pkg string, contract string) {
	i := strings.LastIndex(template, ":")
	if i < 0 {
		return "", template
	}
	return template[:i], template[i+1:]
}
