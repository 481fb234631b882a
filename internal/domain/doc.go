// Package domain models NASA FIRMS fire-detection data and the labeled
// event table built from it.
//
// # Data Source
//
// Fire detections originate from the NASA FIRMS (Fire Information for
// Resource Management System) archive CSVs, one row per satellite
// detection. Each row carries the acquisition date, point coordinates,
// brightness temperature (Kelvin), fire radiative power (MW), and a
// detection confidence value whose encoding varies by instrument
// (numeric 0-100 for MODIS, l/n/h categories for VIIRS). Confidence is
// carried through as-is and never interpreted.
//
// # Spatial Grid
//
// Point detections are snapped onto a fixed grid of 0.005° cells
// (roughly 500 m at the equator). A cell is identified by its center
// coordinates, rounded to four decimal places so that cells produced
// from different floating-point paths compare equal. See [Discretize].
//
// # Events
//
// An Event is one row of the training table: a calendar day, a grid
// cell, and a fire/no-fire label. Positive events aggregate every
// detection sharing a (day, cell) key: brightness and FRP are averaged,
// confidence is taken from the earliest detection. Negative events are
// drawn by seeded rejection sampling over the full (date range × grid)
// domain; a draw colliding with a positive key is discarded without a
// retry, so the realized negative count may fall short of the target.
// That shortfall is deliberate: reference datasets were produced with
// the same draw-and-discard semantics, and a top-up pass would change
// the sampling distribution.
//
// # Weather Features
//
// Events are enriched with same-day weather (max/min/mean temperature,
// mean relative humidity, max wind speed, daily precipitation) and
// three trailing precipitation accumulators over the 7, 14 and 30 days
// preceding the event. The accumulator window is [D-N, D-1]: the event
// day itself never contributes, since same-day rainfall is not known
// before the day being predicted. Missing values are carried as NaN and
// rows lacking mean temperature, humidity, or the 7-day accumulator are
// dropped rather than imputed.
//
// # Seasons
//
// The dry-season flag covers the two annual dry windows of the bimodal
// climate of the Cali study region: December-February and June-August.
package domain
