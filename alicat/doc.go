// Package alicat implements the Alicat ASCII command/response dialect for
// mass flow meters and controllers, on top of the transport package's
// reconnecting session.
//
// A Meter is the read-only role: it decodes the device's state line into
// named fields, adapting to the firmware-dependent response shape, and
// carries the operations every device supports (tares, button lock,
// totalizer reset). A Controller extends a Meter with the writable control
// surface: setpoints, control-point selection, gas selection, COMPOSER
// mixes, PID registers, and valve holds.
//
// Devices share a bus and are addressed by a single-letter unit identifier;
// sessions for different units on the same physical link can share the
// connection through NewSharedMeter and NewSharedController.
package alicat
