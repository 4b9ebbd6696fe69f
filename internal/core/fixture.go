package core

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// Constant fixture field values. Library entries are never track fixtures,
// so the track fields always carry their unset defaults.
const (
	FixtureUseLibrary     = "FIXTURE_USE_LIBRARY"
	DefaultLampWattage    = "0.000"
	DefaultPowerAdjFactor = "0.000"
	DefaultPafDesc        = "None"
	LightingTypeLED       = "LED"
	LampTypePrefix        = "LED "
	UnspecifiedBallast    = "UNSPECIFIED_BALLAST"
	DefaultNumberOfLamps  = "1"
	WattageBasisNotSet    = "WATTAGE_BASIS_NOT_SET"
	trackZero             = "0"
)

// Fixture is one <fixture> element. Field order is the element order of the
// serialized document.
type Fixture struct {
	ListPosition               string `xml:"listPosition"`
	FixtureUseType             string `xml:"fixtureUseType"`
	LampWattage                string `xml:"lampWattage"`
	PowerAdjustmentFactor      string `xml:"powerAdjustmentFactor"`
	PafDesc                    string `xml:"pafDesc"`
	LightingType               string `xml:"lightingType"`
	Description                string `xml:"description"`
	LampBallastDescription     string `xml:"lampBallastDescription"`
	LampType                   string `xml:"lampType"`
	Ballast                    string `xml:"ballast"`
	FixtureType                string `xml:"fixtureType"`
	TypeOfFixture              string `xml:"typeOfFixture"`
	NumberOfLamps              string `xml:"numberOfLamps"`
	FixtureWattage             string `xml:"fixtureWattage"`
	TrackLightingWattageBasis  string `xml:"trackLightingWattageBasis"`
	TrackTotalLuminaireWattage string `xml:"trackTotalLuminaireWattage"`
	TrackLength                string `xml:"trackLength"`
	TrackCircuitBreakerAmps    string `xml:"trackCircuitBreakerAmps"`
	TrackCircuitBreakerVolts   string `xml:"trackCircuitBreakerVolts"`
	TrackCurrentLimiterWattage string `xml:"trackCurrentLimiterWattage"`
	TrackTransformerWattage    string `xml:"trackTransformerWattage"`
}

// FixtureLibrary is the <fixtureLibrary> document root.
type FixtureLibrary struct {
	XMLName  xml.Name  `xml:"fixtureLibrary"`
	Fixtures []Fixture `xml:"fixture"`
}

// NewFixture builds the fixture for the sanitized row at 1-based position.
//
// A missing Description or Fixture Type yields an empty string, while a
// missing Wattage yields a fixture wattage of "0".
func NewFixture(position int, row SanitizedRow) Fixture {
	description := row[ColumnDescription]
	fixtureType := row[ColumnFixtureType]

	wattage, hasWattage := row[ColumnWattage]
	wattageDigits := DigitsOnly(wattage)
	if !hasWattage {
		wattageDigits = DigitsOnly(trackZero)
	}

	return Fixture{
		ListPosition:               strconv.Itoa(position),
		FixtureUseType:             FixtureUseLibrary,
		LampWattage:                DefaultLampWattage,
		PowerAdjustmentFactor:      DefaultPowerAdjFactor,
		PafDesc:                    DefaultPafDesc,
		LightingType:               LightingTypeLED,
		Description:                description,
		LampBallastDescription:     "",
		LampType:                   LampTypePrefix + wattage,
		Ballast:                    UnspecifiedBallast,
		FixtureType:                fixtureType,
		TypeOfFixture:              "",
		NumberOfLamps:              DefaultNumberOfLamps,
		FixtureWattage:             wattageDigits,
		TrackLightingWattageBasis:  WattageBasisNotSet,
		TrackTotalLuminaireWattage: trackZero,
		TrackLength:                trackZero,
		TrackCircuitBreakerAmps:    trackZero,
		TrackCircuitBreakerVolts:   trackZero,
		TrackCurrentLimiterWattage: trackZero,
		TrackTransformerWattage:    trackZero,
	}
}

// BuildLibrary maps sanitized rows to fixtures in row order.
func BuildLibrary(rows []SanitizedRow) FixtureLibrary {
	lib := FixtureLibrary{Fixtures: make([]Fixture, 0, len(rows))}
	for i, row := range rows {
		lib.Fixtures = append(lib.Fixtures, NewFixture(i+1, row))
	}
	return lib
}

// Encode writes the UTF-8 XML declaration followed by the indented document.
func (l FixtureLibrary) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write xml header: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode fixture library: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close xml encoder: %w", err)
	}

	_, err := io.WriteString(w, "\n")
	return err
}
