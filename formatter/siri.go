package formatter

import (
	"time"

	"github.com/theoremus-urban-solutions/transit-types/siri"

	"github.com/theoremus-urban-solutions/ztm-departures/board"
	"github.com/theoremus-urban-solutions/ztm-departures/departures"
	"github.com/theoremus-urban-solutions/ztm-departures/utils"
)

// DefaultCodespace prefixes SIRI references when none is configured.
const DefaultCodespace = "ZTM"

// BuildEstimatedTimetable converts a board view to a SIRI ET delivery. Every departure
// becomes one vehicle journey with a single estimated call at the board's stop pole.
func BuildEstimatedTimetable(v board.View, now time.Time, codespace string) siri.EstimatedTimetableDelivery {
	if codespace == "" {
		codespace = DefaultCodespace
	}
	journeys := make([]siri.EstimatedVehicleJourney, 0, len(v.Departures))
	for _, e := range v.Departures {
		journeys = append(journeys, buildEstimatedVehicleJourney(v, e, now, codespace))
	}

	frame := siri.EstimatedJourneyVersionFrame{
		RecordedAtTime:          utils.Iso8601Extended(now),
		EstimatedVehicleJourney: journeys,
	}

	return siri.EstimatedTimetableDelivery{
		Version:                      "2.0",
		ResponseTimestamp:            utils.Iso8601Extended(now),
		EstimatedJourneyVersionFrame: []siri.EstimatedJourneyVersionFrame{frame},
	}
}

func buildEstimatedVehicleJourney(v board.View, e board.Entry, now time.Time, codespace string) siri.EstimatedVehicleJourney {
	serviceDay := entryServiceDay(e)
	aimed := utils.Iso8601Extended(e.Timestamp)

	call := siri.EstimatedCall{
		StopPointRef:          codespace + ":Quay:" + v.StopID + v.StopNr,
		Order:                 1,
		StopPointName:         v.StopName,
		AimedDepartureTime:    aimed,
		ExpectedDepartureTime: aimed,
	}

	return siri.EstimatedVehicleJourney{
		RecordedAtTime: utils.Iso8601Extended(now),
		LineRef:        codespace + ":Line:" + v.Line,
		DirectionRef:   e.Direction,
		FramedVehicleJourneyRef: siri.FramedVehicleJourneyRef{
			DataFrameRef:           utils.Iso8601Date(serviceDay),
			DatedVehicleJourneyRef: codespace + ":ServiceJourney:" + journeyID(v, e),
		},
		VehicleMode:            departures.VehicleMode(v.Line),
		DestinationName:        e.Direction,
		Monitored:              false,
		DataSource:             codespace,
		EstimatedCalls:         []siri.EstimatedCall{call},
		IsCompleteStopSequence: false,
	}
}

// WrapEstimatedTimetableResponse wraps ET deliveries in a complete SIRI response
func WrapEstimatedTimetableResponse(now time.Time, codespace string, deliveries ...siri.EstimatedTimetableDelivery) *utils.SiriResponse {
	if codespace == "" {
		codespace = DefaultCodespace
	}
	if deliveries == nil {
		deliveries = []siri.EstimatedTimetableDelivery{}
	}
	return &utils.SiriResponse{
		Siri: utils.SiriServiceDelivery{
			ServiceDelivery: utils.ServiceDelivery{
				ResponseTimestamp:          utils.Iso8601(now),
				ProducerRef:                codespace,
				EstimatedTimetableDelivery: deliveries,
			},
		},
	}
}
