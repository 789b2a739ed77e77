package memory

import (
	"encoding/json"
	"fmt"
)

// Bucket names used by the durable drivers' state table.
const (
	BucketRequests       = "requests"
	BucketApprovals      = "approvals"
	BucketQuotes         = "quotes"
	BucketPurchaseOrders = "purchase_orders"
	BucketSpareParts     = "spare_parts"
	BucketMachines       = "machines"
	BucketAssemblies     = "assemblies"
	BucketSubAssemblies  = "sub_assemblies"
	BucketCounters       = "counters"
)

// Buckets lists every bucket in persistence order.
var Buckets = []string{
	BucketRequests,
	BucketApprovals,
	BucketQuotes,
	BucketPurchaseOrders,
	BucketSpareParts,
	BucketMachines,
	BucketAssemblies,
	BucketSubAssemblies,
	BucketCounters,
}

func (s *Snapshot) bucketTarget(bucket string) (any, bool) {
	switch bucket {
	case BucketRequests:
		return &s.Requests, true
	case BucketApprovals:
		return &s.Approvals, true
	case BucketQuotes:
		return &s.Quotes, true
	case BucketPurchaseOrders:
		return &s.PurchaseOrders, true
	case BucketSpareParts:
		return &s.SpareParts, true
	case BucketMachines:
		return &s.Machines, true
	case BucketAssemblies:
		return &s.Assemblies, true
	case BucketSubAssemblies:
		return &s.SubAssemblies, true
	case BucketCounters:
		return &s.Counters, true
	}
	return nil, false
}

// EncodeBuckets marshals each bucket of the snapshot to JSON.
func (s Snapshot) EncodeBuckets() (map[string][]byte, error) {
	out := make(map[string][]byte, len(Buckets))
	for _, bucket := range Buckets {
		target, _ := s.bucketTarget(bucket)
		data, err := json.Marshal(target)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		out[bucket] = data
	}
	return out, nil
}

// DecodeBucket unmarshals payload into the named bucket. Unknown buckets are
// ignored so older tables keep loading.
func (s *Snapshot) DecodeBucket(bucket string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	target, ok := s.bucketTarget(bucket)
	if !ok {
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}
