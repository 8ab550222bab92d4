// Command labnwb converts raw lab recording sessions into per-session
// NWB-style containers and optionally ingests them into the analysis
// database.
package main
