// Package types contains the preference enums shared across the application.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownValue is returned when parsing an enum value that is not recognised.
var ErrUnknownValue = errors.New("unknown enum value")

// Language is the programming language a user wants to work in.
type Language string

const (
	LanguagePython     Language = "PYTHON"
	LanguageJavaScript Language = "JAVASCRIPT"
	LanguageOpen       Language = "OPEN"
)

// SkillLevel is a user's self-assessed level.
type SkillLevel string

const (
	SkillExplorer SkillLevel = "EXPLORER"
	SkillBuilder  SkillLevel = "BUILDER"
	SkillCreator  SkillLevel = "CREATOR"
)

// ProjectRole says whether a user brings a project or joins one.
type ProjectRole string

const (
	RoleProvider ProjectRole = "PROVIDER"
	RoleTaker    ProjectRole = "TAKER"
)

// Platform is the user's operating system.
type Platform string

const (
	PlatformWindows Platform = "WINDOWS"
	PlatformMac     Platform = "MAC"
)

// ParseLanguage parses a case-insensitive language name.
func ParseLanguage(s string) (Language, error) {
	l := Language(normalize(s))
	if !l.Valid() {
		return "", fmt.Errorf("language %q: %w", s, ErrUnknownValue)
	}
	return l, nil
}

// Valid reports whether l is a known language.
func (l Language) Valid() bool {
	switch l {
	case LanguagePython, LanguageJavaScript, LanguageOpen:
		return true
	}
	return false
}

func (l Language) String() string { return string(l) }

// ParseSkillLevel parses a case-insensitive skill level.
func ParseSkillLevel(s string) (SkillLevel, error) {
	v := SkillLevel(normalize(s))
	if !v.Valid() {
		return "", fmt.Errorf("skill level %q: %w", s, ErrUnknownValue)
	}
	return v, nil
}

// Valid reports whether s is a known skill level.
func (s SkillLevel) Valid() bool {
	switch s {
	case SkillExplorer, SkillBuilder, SkillCreator:
		return true
	}
	return false
}

func (s SkillLevel) String() string { return string(s) }

// ParseProjectRole parses a case-insensitive project role.
func ParseProjectRole(s string) (ProjectRole, error) {
	r := ProjectRole(normalize(s))
	if !r.Valid() {
		return "", fmt.Errorf("project role %q: %w", s, ErrUnknownValue)
	}
	return r, nil
}

// Valid reports whether r is a known project role.
func (r ProjectRole) Valid() bool {
	return r == RoleProvider || r == RoleTaker
}

func (r ProjectRole) String() string { return string(r) }

// ParsePlatform parses a case-insensitive platform name.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(normalize(s))
	if !p.Valid() {
		return "", fmt.Errorf("platform %q: %w", s, ErrUnknownValue)
	}
	return p, nil
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	return p == PlatformWindows || p == PlatformMac
}

func (p Platform) String() string { return string(p) }

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
