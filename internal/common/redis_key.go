package common

import "fmt"

const RedisKeySequencer = "petquest:sequencer"

func RedisKeyLoginNonce(nonce string) string {
	return fmt.Sprintf("petquest:login_nonce:%s", nonce)
}
