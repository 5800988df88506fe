// Package departures turns raw ZTM timetable records into a "next N departures" view.
//
// The Warsaw timetable API reports scheduled times against a service day that runs
// past midnight: night lines publish hours such as "26:15" (02:15 the next calendar
// day), while the same instant may also appear as "02:15" when fetched after midnight.
// This package resolves both forms to the same absolute timestamp and selects the
// upcoming departures relative to a caller supplied "now".
//
// # Usage
//
//	records, err := client.Timetable(ctx, "7009", "01", "151")
//	if errors.Is(err, departures.ErrNoDeparturesToday) {
//	    records = nil // degrade to the empty result
//	}
//	res := departures.Select(records, time.Now().In(loc), 3, departures.DefaultOptions())
//	for _, d := range res.Departures {
//	    fmt.Println(d.Line, d.Direction, d.Display)
//	}
//
// # Service day
//
// ServiceDayStart picks the calendar date the current service day started on. Between
// 00:00 and 04:59 that is the previous date, so still pending post-midnight departures
// are not pushed a day into the future.
//
// # Thread Safety
//
// Everything here is a pure function of its arguments. Select may be called concurrently
// for independent boards without any locking.
package departures
