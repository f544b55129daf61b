package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArtifactKind identifies the content type stored in an artifact.
type ArtifactKind string

const (
	KindText    ArtifactKind = "text"
	KindCode    ArtifactKind = "code"
	KindImage   ArtifactKind = "image"
	KindSheet   ArtifactKind = "sheet"
	KindSite    ArtifactKind = "site"
	KindPerson  ArtifactKind = "person"
	KindAddress ArtifactKind = "address"
	KindFAQItem ArtifactKind = "faq-item"
	KindLink    ArtifactKind = "link"
)

var knownKinds = map[ArtifactKind]struct{}{
	KindText: {}, KindCode: {}, KindImage: {}, KindSheet: {}, KindSite: {},
	KindPerson: {}, KindAddress: {}, KindFAQItem: {}, KindLink: {},
}

// AllKinds returns every known kind in declaration order.
func AllKinds() []ArtifactKind {
	return []ArtifactKind{KindText, KindCode, KindImage, KindSheet, KindSite, KindPerson, KindAddress, KindFAQItem, KindLink}
}

// Valid reports whether k is one of the known artifact kinds.
func (k ArtifactKind) Valid() bool {
	_, ok := knownKinds[k]
	return ok
}

// ParseArtifactKind converts raw input into an ArtifactKind.
func ParseArtifactKind(raw string) (ArtifactKind, error) {
	k := ArtifactKind(strings.ToLower(strings.TrimSpace(raw)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown artifact kind %q", raw)
	}
	return k, nil
}

var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrNotPublished     = errors.New("artifact is not published")
	ErrJobNotFound      = errors.New("site generation job not found")
)

// Artifact is one version of a user's content record.
// Versions share ID and are ordered by CreatedAt; the newest one is current.
// A non-nil DeletedAt on the current version marks the artifact as deleted.
type Artifact struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UserID    string
	WorldID   *string // nil for production data
	Kind      ArtifactKind
	Title     string
	Summary   string
	Content   string
	DeletedAt *time.Time
}

// ArtifactCandidate is the read-only projection offered to the site selector.
type ArtifactCandidate struct {
	ArtifactID uuid.UUID    `json:"artifactId"`
	Title      string       `json:"title"`
	Summary    string       `json:"summary"`
	Kind       ArtifactKind `json:"kind"`
}

// CandidateQuery scopes a candidate lookup to one user and world.
type CandidateQuery struct {
	UserID  string
	WorldID *string
	Kinds   []ArtifactKind
	Limit   int
	Offset  int
}

// NormalizeWorldID maps blank world identifiers to nil (production scope).
func NormalizeWorldID(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
