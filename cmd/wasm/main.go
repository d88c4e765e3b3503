//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/weikengchen/fps-r0/bigint"
	"github.com/weikengchen/fps-r0/journal"
	"github.com/weikengchen/fps-r0/verify"
	"github.com/weikengchen/fps-r0/witness"
)

func main() {
	c := make(chan struct{})

	// Register verifyWitness function
	js.Global().Set("verifyWitness", js.FuncOf(verifyWitnessWrapper))

	println("fps-r0 verifier WASM loaded")

	<-c
}

// verifyWitnessWrapper wraps verifyWitness in a JavaScript Promise.
// Arguments: base64 Borsh witness, optional strategy.
func verifyWitnessWrapper(this js.Value, args []js.Value) interface{} {
	var witnessB64, strategy string
	if len(args) > 0 {
		witnessB64 = args[0].String()
	}
	if len(args) > 1 {
		strategy = args[1].String()
	}

	handler := js.FuncOf(func(this js.Value, promiseArgs []js.Value) interface{} {
		resolve := promiseArgs[0]
		reject := promiseArgs[1]

		go func() {
			if witnessB64 == "" {
				reject.Invoke(js.ValueOf("expected arguments: witnessBase64[, strategy]"))
				return
			}

			result, err := verifyWitness(witnessB64, strategy)
			if err != nil {
				reject.Invoke(js.ValueOf(err.Error()))
				return
			}
			resolve.Invoke(js.ValueOf(result))
		}()

		return nil
	})

	promiseConstructor := js.Global().Get("Promise")
	return promiseConstructor.New(handler)
}

// verifyWitness returns the JSON receipt for a base64 witness
func verifyWitness(witnessB64, strategy string) (string, error) {
	w, err := witness.DecodeFromBase64(witnessB64)
	if err != nil {
		return "", err
	}

	s := bigint.LimbSerial
	if strategy != "" {
		if s, err = bigint.ParseStrategy(strategy); err != nil {
			return "", err
		}
	}

	var j journal.Journal
	ledger := &journal.CycleLedger{}
	svc, err := verify.NewService(&j, verify.Config{Strategy: s}, verify.WithMeter(ledger))
	if err != nil {
		return "", err
	}

	_, verifyErr := svc.Verify(w)
	if verifyErr != nil {
		if _, ok := verify.ReasonOf(verifyErr); !ok {
			return "", verifyErr
		}
	}

	out, err := json.Marshal(journal.NewReceipt(&j, ledger, verifyErr == nil, string(s)))
	if err != nil {
		return "", fmt.Errorf("failed to marshal receipt: %w", err)
	}
	return string(out), nil
}
