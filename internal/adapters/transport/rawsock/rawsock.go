// Package rawsock implements ports.Transport by crafting and injecting
// Ethernet+IPv4+ICMPv4 echo frames directly on a network interface, the
// teacher's pcap-handle injection pattern generalized from 802.11
// management frames to wired ICMP echo/reply pairs.
package rawsock

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/ssmendon/sdnprobe/internal/core/ports"
)

// Transport sends and receives ICMPv4 echo frames on a single interface
// using a pcap handle for both injection and capture, falling back to pcap
// unconditionally: unlike the teacher's WiFi injector there is no raw
// AF_PACKET fast path here, since libpcap's BPF-filtered capture loop is
// what makes matching echo replies to outstanding requests tractable.
type Transport struct {
	iface   string
	handle  *pcap.Handle
	localIP net.IP
	localHW net.HardwareAddr
	mu      sync.Mutex // serializes WritePacketData across Send/SendAndRecv/PacingSend

	pending   map[uint16]chan domain.RTT
	pendingMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
}

// New opens a pcap handle on iface in promiscuous mode and starts the
// background reply-matching loop.
func New(iface string) (*Transport, error) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, fmt.Errorf("rawsock: lookup interface %s: %w", iface, err)
	}

	addrs, err := ifi.Addrs()
	if err != nil {
		return nil, fmt.Errorf("rawsock: addrs for %s: %w", iface, err)
	}
	var localIP net.IP
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
			localIP = ipnet.IP.To4()
			break
		}
	}
	if localIP == nil {
		return nil, fmt.Errorf("rawsock: interface %s has no IPv4 address", iface)
	}

	handle, err := pcap.OpenLive(iface, 65536, true, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("rawsock: open %s: %w", iface, err)
	}
	if err := handle.SetBPFFilter("icmp"); err != nil {
		handle.Close()
		return nil, fmt.Errorf("rawsock: set bpf filter: %w", err)
	}

	t := &Transport{
		iface:   iface,
		handle:  handle,
		localIP: localIP,
		localHW: ifi.HardwareAddr,
		pending: make(map[uint16]chan domain.RTT),
		done:    make(chan struct{}),
	}
	go t.receiveLoop()
	return t, nil
}

// receiveLoop parses every captured ICMP packet and, if it is an echo
// reply whose ID matches an outstanding request, signals that request's
// channel. SendAndRecv measures the RTT itself, from its own send time.
func (t *Transport) receiveLoop() {
	source := gopacket.NewPacketSource(t.handle, t.handle.LinkType())
	start := time.Now()
	for {
		select {
		case <-t.done:
			return
		case packet, ok := <-source.Packets():
			if !ok {
				return
			}
			layer := packet.Layer(layers.LayerTypeICMPv4)
			if layer == nil {
				continue
			}
			icmp, _ := layer.(*layers.ICMPv4)
			if icmp.TypeCode.Type() != layers.ICMPv4TypeEchoReply {
				continue
			}
			id := icmp.Id
			t.pendingMu.Lock()
			ch, waiting := t.pending[id]
			if waiting {
				delete(t.pending, id)
			}
			t.pendingMu.Unlock()
			if waiting {
				select {
				case ch <- domain.RTT(time.Since(start).Seconds()):
				default:
				}
			}
		}
	}
}

// craftEcho builds an Ethernet+IPv4+ICMPv4 echo request frame for pkt.
func (t *Transport) craftEcho(pkt domain.ProbePacket, seq uint16) ([]byte, error) {
	srcMAC, err := net.ParseMAC(pkt.SrcMAC)
	if err != nil {
		return nil, fmt.Errorf("rawsock: parse src mac %q: %w", pkt.SrcMAC, err)
	}
	srcIP := net.ParseIP(pkt.SrcIP).To4()
	dstIP := net.ParseIP(pkt.DstIP).To4()
	if srcIP == nil || dstIP == nil {
		return nil, fmt.Errorf("rawsock: invalid src/dst IP %q/%q", pkt.SrcIP, pkt.DstIP)
	}

	eth := &layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       broadcastMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolICMPv4,
		SrcIP:    srcIP,
		DstIP:    dstIP,
	}
	icmp := &layers.ICMPv4{
		TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0),
		Id:       pkt.ICMPID,
		Seq:      seq,
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	payload := gopacket.Payload([]byte("sdnprobe"))
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, icmp, payload); err != nil {
		return nil, fmt.Errorf("rawsock: serialize echo: %w", err)
	}
	return buf.Bytes(), nil
}

var broadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// SendAndRecv transmits one echo request and waits up to timeout for its
// matching reply.
func (t *Transport) SendAndRecv(ctx context.Context, pkt domain.ProbePacket, timeout time.Duration) (domain.RTT, error) {
	seq := uint16(rand.Intn(1 << 16))
	frame, err := t.craftEcho(pkt, seq)
	if err != nil {
		return 0, err
	}

	ch := make(chan domain.RTT, 1)
	t.pendingMu.Lock()
	t.pending[pkt.ICMPID] = ch
	t.pendingMu.Unlock()
	defer func() {
		t.pendingMu.Lock()
		delete(t.pending, pkt.ICMPID)
		t.pendingMu.Unlock()
	}()

	t.mu.Lock()
	sentAt := time.Now()
	writeErr := t.handle.WritePacketData(frame)
	t.mu.Unlock()
	if writeErr != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrTransmissionFailure, writeErr)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-ch:
		return domain.RTT(time.Since(sentAt).Seconds()).Clamp(), nil
	case <-timer.C:
		return domain.InfRTT, nil
	}
}

// Send fires a single echo request with no reply expected.
func (t *Transport) Send(ctx context.Context, pkt domain.ProbePacket) error {
	frame, err := t.craftEcho(pkt, uint16(rand.Intn(1<<16)))
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.handle.WritePacketData(frame); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransmissionFailure, err)
	}
	return nil
}

// PacingSend transmits pkts at a mean rate of pps packets per second,
// returning once the batch is drained or ctx is cancelled.
func (t *Transport) PacingSend(ctx context.Context, pkts []domain.ProbePacket, pps int) error {
	if pps <= 0 {
		return fmt.Errorf("rawsock: pacing_send requires pps > 0")
	}
	interval := time.Second / time.Duration(pps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for _, pkt := range pkts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if err := t.Send(ctx, pkt); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the receive loop and releases the pcap handle.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
		t.handle.Close()
	})
	return nil
}

var _ ports.Transport = (*Transport)(nil)
