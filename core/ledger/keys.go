package ledger

import "fmt"

var (
	adSeqKey         = []byte("ads/seq")
	adPrefix         = []byte("ads/id/")
	adKeyIndexPrefix = []byte("ads/key/")

	milestoneSeqKey         = []byte("milestones/seq")
	milestonePrefix         = []byte("milestones/id/")
	milestoneKeyIndexPrefix = []byte("milestones/key/")

	watchPrefix = []byte("watch/")

	reservationPrefix   = []byte("reservations/req/")
	reservationIndexKey = []byte("reservations/index")

	conversionPrefix = []byte("conversions/req/")

	paramsKey     = []byte("params/config")
	ownerKey      = []byte("params/owner")
	tokenOwnerKey = []byte("params/token-owner")
)

func adKey(id uint64) []byte {
	return append(append([]byte(nil), adPrefix...), []byte(fmt.Sprintf("%020d", id))...)
}

func adKeyIndex(key string) []byte {
	return append(append([]byte(nil), adKeyIndexPrefix...), []byte(key)...)
}

func milestoneKey(id uint64) []byte {
	return append(append([]byte(nil), milestonePrefix...), []byte(fmt.Sprintf("%020d", id))...)
}

func milestoneKeyIndex(key string) []byte {
	return append(append([]byte(nil), milestoneKeyIndexPrefix...), []byte(key)...)
}

func watchKey(account string) []byte {
	return append(append([]byte(nil), watchPrefix...), []byte(account)...)
}

func reservationKey(requestID string) []byte {
	return append(append([]byte(nil), reservationPrefix...), []byte(requestID)...)
}

func conversionKey(requestID string) []byte {
	return append(append([]byte(nil), conversionPrefix...), []byte(requestID)...)
}
