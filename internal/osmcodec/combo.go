package osmcodec

import (
	"io"

	gerrors "github.com/chlohal/geostore/pkg/errors"
)

// accessLevel is the small fixed enumeration osm_structures's
// access.rs niches `access`/`foot`/`bicycle`/etc tags into, instead of
// spilling them to the general string pool.
type accessLevel byte

const (
	AccessYes accessLevel = iota
	AccessNo
	AccessPrivate
	AccessPermissive
	AccessDesignated
	AccessDestination
	AccessAgricultural
	AccessCustomers
)

var accessLevelNames = map[string]accessLevel{
	"yes":          AccessYes,
	"no":           AccessNo,
	"private":      AccessPrivate,
	"permissive":   AccessPermissive,
	"designated":   AccessDesignated,
	"destination":  AccessDestination,
	"agricultural": AccessAgricultural,
	"customers":    AccessCustomers,
}

// AccessCombo is the structured `access`/`foot`/`bicycle`/`motor_vehicle`
// field: a subject (which tag key this access value was for) paired
// with the niched access level, one byte total.
type AccessCombo struct {
	Subject accessSubject
	Level   accessLevel
}

// accessSubject identifies which of the handful of access-related tag
// keys produced this AccessCombo.
type accessSubject byte

const (
	AccessSubjectGeneral accessSubject = iota
	AccessSubjectFoot
	AccessSubjectBicycle
	AccessSubjectMotorVehicle
	AccessSubjectVehicle
	AccessSubjectHorse
)

var accessSubjectNames = map[string]accessSubject{
	"access":        AccessSubjectGeneral,
	"foot":          AccessSubjectFoot,
	"bicycle":       AccessSubjectBicycle,
	"motor_vehicle": AccessSubjectMotorVehicle,
	"vehicle":       AccessSubjectVehicle,
	"horse":         AccessSubjectHorse,
}

func (AccessCombo) fieldTagOf() fieldTag { return fieldTagAccess }

// AccessComboFromTag builds an AccessCombo from an OSM key/value pair,
// returning ok=false if key isn't a recognized access subject or value
// isn't a recognized access level.
func AccessComboFromTag(key, value string) (AccessCombo, bool) {
	subject, ok := accessSubjectNames[key]
	if !ok {
		return AccessCombo{}, false
	}
	level, ok := accessLevelNames[value]
	if !ok {
		return AccessCombo{}, false
	}
	return AccessCombo{Subject: subject, Level: level}, true
}

// Encode packs subject into the high nibble and level into the low
// nibble of a single byte.
func (a AccessCombo) Encode(w io.Writer) error {
	_, err := w.Write([]byte{byte(a.Subject)<<4 | byte(a.Level)})
	return err
}

// DecodeAccessCombo is the inverse of AccessCombo.Encode.
func DecodeAccessCombo(r io.Reader) (AccessCombo, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return AccessCombo{}, gerrors.NewMalformedInputError(err, "access-combo", 0)
	}
	return AccessCombo{Subject: accessSubject(b[0] >> 4), Level: accessLevel(b[0] & 0xf)}, nil
}

// direction is the niched value of `oneway`/`incline`-style directional
// tags.
type direction byte

const (
	DirectionForward direction = iota
	DirectionBackward
	DirectionBoth
)

var directionNames = map[string]direction{
	"yes":          DirectionForward,
	"1":            DirectionForward,
	"true":         DirectionForward,
	"-1":           DirectionBackward,
	"reverse":      DirectionBackward,
	"no":           DirectionBoth,
	"false":        DirectionBoth,
	"0":            DirectionBoth,
	"both":         DirectionBoth,
	"alternating":  DirectionBoth,
	"reversible":   DirectionBoth,
}

// DirectionalCombo is the structured `oneway`/`incline`-direction field:
// a single niched direction value, one byte.
type DirectionalCombo struct {
	Direction direction
}

func (DirectionalCombo) fieldTagOf() fieldTag { return fieldTagDirectional }

// DirectionalComboFromTag builds a DirectionalCombo from a tag value,
// returning ok=false if value isn't a recognized direction token.
func DirectionalComboFromTag(value string) (DirectionalCombo, bool) {
	d, ok := directionNames[value]
	if !ok {
		return DirectionalCombo{}, false
	}
	return DirectionalCombo{Direction: d}, true
}

func (d DirectionalCombo) Encode(w io.Writer) error {
	_, err := w.Write([]byte{byte(d.Direction)})
	return err
}

// DecodeDirectionalCombo is the inverse of DirectionalCombo.Encode.
func DecodeDirectionalCombo(r io.Reader) (DirectionalCombo, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return DirectionalCombo{}, gerrors.NewMalformedInputError(err, "directional-combo", 0)
	}
	return DirectionalCombo{Direction: direction(b[0])}, nil
}

// multiYesModes are the transport-mode tag keys MultiYesCombo packs
// into a bitmask, one bit per mode meaning "tag present with a
// yes-shaped value" (yes/designated/permissive all collapse to set).
var multiYesModes = []string{
	"foot", "bicycle", "horse", "motor_vehicle", "motorcar", "hgv", "psv", "bus",
}

// MultiYesCombo packs a cluster of independent yes/no-shaped transport
// tags (foot=yes, bicycle=yes, ...) into a single bitmask byte rather
// than spending a field slot per tag.
type MultiYesCombo struct {
	Mask byte
}

func (MultiYesCombo) fieldTagOf() fieldTag { return fieldTagMultiYes }

// SetMode sets the bit for the given mode key, returning false if key
// isn't a recognized member of multiYesModes.
func (m *MultiYesCombo) SetMode(key string) bool {
	for i, mode := range multiYesModes {
		if mode == key {
			m.Mask |= 1 << uint(i)
			return true
		}
	}
	return false
}

// HasMode reports whether the bit for key is set.
func (m MultiYesCombo) HasMode(key string) bool {
	for i, mode := range multiYesModes {
		if mode == key {
			return m.Mask&(1<<uint(i)) != 0
		}
	}
	return false
}

func (m MultiYesCombo) Encode(w io.Writer) error {
	_, err := w.Write([]byte{m.Mask})
	return err
}

// DecodeMultiYesCombo is the inverse of MultiYesCombo.Encode.
func DecodeMultiYesCombo(r io.Reader) (MultiYesCombo, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return MultiYesCombo{}, gerrors.NewMalformedInputError(err, "multi-yes-combo", 0)
	}
	return MultiYesCombo{Mask: b[0]}, nil
}
