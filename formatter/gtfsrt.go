package formatter

import (
	"fmt"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/ztm-departures/board"
	"github.com/theoremus-urban-solutions/ztm-departures/departures"
	"github.com/theoremus-urban-solutions/ztm-departures/utils"
)

// BuildTripUpdates converts board views to a GTFS-Realtime FULL_DATASET feed with one
// TripUpdate per departure.
func BuildTripUpdates(now time.Time, views ...board.View) *gtfs.FeedMessage {
	incrementality := gtfs.FeedHeader_FULL_DATASET
	msg := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      &incrementality,
			Timestamp:           proto.Uint64(uint64(now.Unix())),
		},
	}
	for _, v := range views {
		for _, e := range v.Departures {
			msg.Entity = append(msg.Entity, buildTripUpdateEntity(v, e))
		}
	}
	return msg
}

func buildTripUpdateEntity(v board.View, e board.Entry) *gtfs.FeedEntity {
	id := journeyID(v, e)
	serviceDay := entryServiceDay(e)

	trip := &gtfs.TripDescriptor{
		TripId:    proto.String(id),
		RouteId:   proto.String(v.Line),
		StartDate: proto.String(utils.GTFSDate(serviceDay)),
	}
	if sdt, err := departures.ParseServiceDayTime(e.Scheduled, serviceDay); err == nil {
		trip.StartTime = proto.String(utils.GTFSClock(sdt.Minutes, sdt.Seconds))
	}

	tu := &gtfs.TripUpdate{
		Trip: trip,
		StopTimeUpdate: []*gtfs.TripUpdate_StopTimeUpdate{{
			StopId: proto.String(v.StopID + v.StopNr),
			Departure: &gtfs.TripUpdate_StopTimeEvent{
				Time: proto.Int64(e.Timestamp.Unix()),
			},
		}},
	}
	if e.Brigade != "" {
		tu.Vehicle = &gtfs.VehicleDescriptor{Label: proto.String(v.Line + "/" + e.Brigade)}
	}

	return &gtfs.FeedEntity{
		Id:         proto.String(id),
		TripUpdate: tu,
	}
}

// MarshalTripUpdates encodes the feed as protobuf bytes.
func MarshalTripUpdates(msg *gtfs.FeedMessage) ([]byte, error) {
	b, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal trip updates: %w", err)
	}
	return b, nil
}

// journeyID identifies a departure of a line at a stop pole on one service day.
// entryServiceDay is the operating day the entry was resolved against. Past 05:00
// on the next calendar day it no longer matches the timestamp's own service day.
func entryServiceDay(e board.Entry) time.Time {
	if e.ServiceDay.IsZero() {
		return departures.ServiceDayStart(e.Timestamp)
	}
	return e.ServiceDay
}

func journeyID(v board.View, e board.Entry) string {
	return fmt.Sprintf("%s-%s-%s-%d", v.Line, v.StopID, v.StopNr, e.Timestamp.Unix())
}
