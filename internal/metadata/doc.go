// Package metadata loads the per-dataset YAML document describing
// everything the raw files cannot: subject details, device and electrode
// group definitions, camera descriptions, task descriptors with their LED
// configuration, DIO event-name mappings, per-session skip lists, and
// manual epoch-type overrides for sessions the naming heuristics
// misclassify.
package metadata
