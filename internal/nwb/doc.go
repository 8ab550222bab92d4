// Package nwb models the session output container and its on-disk form.
//
// The container mirrors the NWB (Neurodata Without Borders) layout: file
// metadata and subject, device and electrode tables, acquisition series,
// processing modules (behavioral events, pose estimation, task tables,
// processed LFP), an epochs table, and sorted units. Bulk sample payloads
// (raw ephys, video frames) stay in their source files and are referenced
// by path; everything else is embedded.
//
// Serialization is canonical JSON written atomically (temp file + rename),
// so converting the same session twice yields byte-identical output and a
// failed conversion never leaves a half-written container behind.
package nwb
