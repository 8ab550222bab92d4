// Package trodes reads the on-disk formats produced by SpikeGadgets
// acquisition software.
//
// Three layouts are handled:
//   - Extracted data files (.dat): an ASCII settings block delimited by
//     "<Start settings>"/"<End settings>" describing the record layout,
//     followed by packed little-endian binary records. DIO event logs,
//     extracted LFP channels, sorted spike trains, and camera timestamp
//     sidecars all use this framing.
//   - Raw recordings (.rec): an XML workspace header terminated by
//     </Configuration>, followed by fixed-size sample packets.
//   - Camera timestamp sidecars (.videoTimeStamps), a specialization of
//     the extracted layout carrying one sample clock per video frame.
//
// Readers return raw samples and timestamps in the source's native units;
// rebasing onto the session timebase happens in the convert package.
package trodes
