package probe

import (
	"math/rand"

	"github.com/ssmendon/sdnprobe/internal/core/domain"
)

// BuildBatch constructs n probe packets sharing srcIP/dstIP, whose source
// MACs are base mutated by flipping consecutive bits startBit, startBit+1,
// ..., startBit+n-1 (spec.md §3, §4.4 step 1). Each packet gets a fresh
// random ICMP identifier.
func BuildBatch(base *domain.MacIdentity, srcIP, dstIP string, startBit, n int) ([]domain.ProbePacket, error) {
	pkts := make([]domain.ProbePacket, n)
	for i := 0; i < n; i++ {
		mac, err := base.Flip(startBit+i, true)
		if err != nil {
			return nil, err
		}
		pkts[i] = domain.ProbePacket{
			SrcMAC: mac,
			SrcIP:  srcIP,
			DstIP:  dstIP,
			ICMPID: randomICMPID(),
		}
	}
	return pkts, nil
}

func randomICMPID() uint16 {
	return uint16(rand.Intn(1 << 16))
}
