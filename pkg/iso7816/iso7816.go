/*
Package iso7816 implements the APDU layer of ISO/IEC 7816-4 used to talk to PIV cards.

It provides Command and Response APDU encodings, Status Word (SW) analysis, the
CLA and INS bytes, builders for the commands a PIV conformance run needs
(SELECT, GET DATA, GET RESPONSE) and a Client that runs one logical exchange
over a Transmitter.

# Fundamentals

The communication with a smart card is strictly synchronous:
 1. The Host sends a Command APDU (Header + Optional Body).
 2. The Card processes it and returns a Response APDU (Optional Body + Trailer SW1/SW2).

A channel is half-duplex: the response to a command must be consumed before the
next command is sent. Client does not pipeline; re-sending on 6CXX is opt-in.

# Status Words

Every response ends with a 2-byte Status Word (SW).
  - 0x9000: Success (OK).
  - 0x61XX: Success, XX more bytes to fetch with GET RESPONSE.
  - 0x6A82: File, application or data object not found.
  - 0x6982: Security status not satisfied.

# Usage Example

	client := iso7816.NewClient(card)
	trace, err := client.Send(iso7816.GetData(iso7816.BasicClass, []byte{0x5C, 0x03, 0x5F, 0xC1, 0x07}))
	if err != nil {
	    return err
	}
	if trace.IsSuccess() {
	    payload := trace.Data()
	    _ = payload
	}
	fmt.Println(trace.Describe())
*/
package iso7816
