package config

import "time"

// DefaultExecutionTimeout is the deadline applied to one student cell.
const DefaultExecutionTimeout = 2 * time.Second

// ExecutionConfig configures the student-code interpreter.
type ExecutionConfig struct {
	// Deadline for one cell, as a Go duration ("2s") or seconds ("2")
	Timeout string `yaml:"timeout" json:"timeout,omitempty"`

	// Standard library import paths student code may import
	AllowedPackages []string `yaml:"allowed_packages" json:"allowed_packages,omitempty"`
}

// DefaultAllowedPackages lists the stdlib packages offered to notebooks.
// os, os/exec, net, syscall, unsafe and friends are deliberately absent.
func DefaultAllowedPackages() []string {
	return []string{
		"bytes",
		"errors",
		"fmt",
		"math",
		"math/rand",
		"regexp",
		"slices",
		"maps",
		"sort",
		"strconv",
		"strings",
		"time",
		"unicode",
		"unicode/utf8",
		"encoding/json",
		"container/list",
		"container/heap",
	}
}
