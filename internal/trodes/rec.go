package trodes

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"labnwb/internal/services"
)

const configurationEnd = "</Configuration>"

// recPacketSyncByte leads every sample packet in the record region.
const recPacketSyncByte = 0x55

// RecHeader is the decoded XML workspace header of a .rec file plus the
// sample geometry derived from the packet region.
type RecHeader struct {
	SamplingRateHz float64
	NumChannels    int
	HeaderSize     int64

	// SystemTimeAtCreation is the wall-clock creation stamp recorded in
	// the workspace (milliseconds since the Unix epoch, as written).
	SystemTimeAtCreation string

	// HWChanToNTrode maps hardware channel IDs to their nTrode (electrode
	// group) IDs, from the SpikeConfiguration section.
	HWChanToNTrode map[string]string

	FirstSample int64
	SampleCount int64
}

type recConfiguration struct {
	XMLName        xml.Name          `xml:"Configuration"`
	HardwareConfig recHardwareConfig `xml:"HardwareConfiguration"`
	SpikeConfig    recSpikeConfig    `xml:"SpikeConfiguration"`
	GlobalConfig   recGlobalConfig   `xml:"GlobalConfiguration"`
}

type recHardwareConfig struct {
	SamplingRate string `xml:"samplingRate,attr"`
	NumChannels  string `xml:"numChannels,attr"`
}

type recGlobalConfig struct {
	SystemTimeAtStart string `xml:"systemTimeAtCreation,attr"`
}

type recSpikeConfig struct {
	NTrodes []recSpikeNTrode `xml:"SpikeNTrode"`
}

type recSpikeNTrode struct {
	ID       string            `xml:"id,attr"`
	Channels []recSpikeChannel `xml:"SpikeChannel"`
}

type recSpikeChannel struct {
	HWChan string `xml:"hwChan,attr"`
}

// ReadRecHeader reads the XML workspace header of a SpikeGadgets .rec
// file and scans the packet region for the first timestamp and sample
// count. The raw sample payload itself is left on disk; the converter
// references it by path.
func ReadRecHeader(path string) (*RecHeader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrMissingInput, "trodes", "open", path, err)
	}
	defer file.Close()

	headerText, headerSize, err := readConfigurationBlock(file)
	if err != nil {
		return nil, services.Wrap(services.ErrCorruptInput, "trodes", "rec header", path, err)
	}

	var cfg recConfiguration
	if err := xml.Unmarshal(headerText, &cfg); err != nil {
		return nil, services.Wrap(services.ErrCorruptInput, "trodes", "rec header",
			fmt.Sprintf("%s: parse workspace XML", path), err)
	}

	rate, err := strconv.ParseFloat(cfg.HardwareConfig.SamplingRate, 64)
	if err != nil || rate <= 0 {
		return nil, services.Wrap(services.ErrCorruptInput, "trodes", "rec header",
			fmt.Sprintf("%s: invalid samplingRate %q", path, cfg.HardwareConfig.SamplingRate), nil)
	}
	numChannels, err := strconv.Atoi(cfg.HardwareConfig.NumChannels)
	if err != nil || numChannels <= 0 {
		return nil, services.Wrap(services.ErrCorruptInput, "trodes", "rec header",
			fmt.Sprintf("%s: invalid numChannels %q", path, cfg.HardwareConfig.NumChannels), nil)
	}

	hwChanToNTrode := make(map[string]string)
	for _, ntrode := range cfg.SpikeConfig.NTrodes {
		for _, channel := range ntrode.Channels {
			hwChanToNTrode[channel.HWChan] = ntrode.ID
		}
	}

	header := &RecHeader{
		SamplingRateHz:       rate,
		NumChannels:          numChannels,
		HeaderSize:           headerSize,
		SystemTimeAtCreation: cfg.GlobalConfig.SystemTimeAtStart,
		HWChanToNTrode:       hwChanToNTrode,
	}

	if err := header.scanPackets(file); err != nil {
		return nil, services.Wrap(services.ErrCorruptInput, "trodes", "rec packets", path, err)
	}
	return header, nil
}

// readConfigurationBlock reads the file up to and including the line
// holding the </Configuration> terminator. Trodes writes the terminator
// on its own line; the packet region begins on the next byte.
func readConfigurationBlock(file *os.File) ([]byte, int64, error) {
	reader := bufio.NewReader(file)
	var header bytes.Buffer
	terminator := []byte(configurationEnd)
	for {
		line, err := reader.ReadBytes('\n')
		header.Write(line)
		if bytes.Contains(line, terminator) {
			return header.Bytes(), int64(header.Len()), nil
		}
		if err != nil {
			if err == io.EOF {
				return nil, 0, fmt.Errorf("workspace header has no %s terminator", configurationEnd)
			}
			return nil, 0, err
		}
	}
}

// packetSize returns the byte size of one sample packet: sync byte,
// uint32 sample clock, one int16 per channel.
func (h *RecHeader) packetSize() int64 {
	return 1 + 4 + 2*int64(h.NumChannels)
}

func (h *RecHeader) scanPackets(file *os.File) error {
	info, err := file.Stat()
	if err != nil {
		return err
	}
	payload := info.Size() - h.HeaderSize
	if payload < 0 {
		return fmt.Errorf("header size %d exceeds file size %d", h.HeaderSize, info.Size())
	}
	size := h.packetSize()
	if payload%size != 0 {
		return fmt.Errorf("%d payload bytes is not a multiple of packet size %d", payload, size)
	}
	h.SampleCount = payload / size
	if h.SampleCount == 0 {
		return fmt.Errorf("recording contains no sample packets")
	}

	packet := make([]byte, size)
	if _, err := file.ReadAt(packet, h.HeaderSize); err != nil {
		return err
	}
	if packet[0] != recPacketSyncByte {
		return fmt.Errorf("first packet sync byte is 0x%02x, want 0x%02x", packet[0], recPacketSyncByte)
	}
	h.FirstSample = int64(binary.LittleEndian.Uint32(packet[1:5]))
	return nil
}

// NTrodeIDs returns the distinct electrode group IDs in header order.
func (h *RecHeader) NTrodeIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, ntrode := range h.HWChanToNTrode {
		if !seen[ntrode] {
			seen[ntrode] = true
			ids = append(ids, ntrode)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return ids[i] < ids[j]
	})
	return ids
}

// ChannelsByNTrode groups hardware channel IDs by electrode group.
func (h *RecHeader) ChannelsByNTrode() map[string][]string {
	groups := make(map[string][]string)
	for hwChan, ntrode := range h.HWChanToNTrode {
		groups[ntrode] = append(groups[ntrode], hwChan)
	}
	for _, channels := range groups {
		sort.Slice(channels, func(i, j int) bool {
			a, errA := strconv.Atoi(channels[i])
			b, errB := strconv.Atoi(channels[j])
			if errA == nil && errB == nil {
				return a < b
			}
			return channels[i] < channels[j]
		})
	}
	return groups
}
