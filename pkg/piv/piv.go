/*
Package piv implements the PIV card client of a conformance run: the APDU codec
for SELECT and GET DATA, and the card operations of SP 800-73-4 Part 3 expressed
as a middleware Status.

# Exchanges

Every operation is one atomic exchange on a Handle: build the command, transmit
it, interpret the status word. The client keeps no state between calls and does
not retry. '61XX' answers are completed with GET RESPONSE inside the exchange.

	SELECT   00 A4 04 00 Lc <AID> 00
	GET DATA 00 CB 3F FF Lc 5C <len> <tag> 00

# Status Mapping

Transport faults and status words are converted to a Status; no error escapes
the client.

	9000                      StatusOK
	6A82 (SELECT)             StatusCardApplicationNotFound
	6A82 (GET DATA)           StatusDataObjectNotFound
	6982 or ErrSecurityViolation (GET DATA)
	                          StatusSecurityConditionsNotSatisfied
	other word or fault       StatusConnectionFailure
	no live connection        StatusInvalidCardHandle

# Usage Example

	h := piv.NewHandle(card)
	c := piv.NewClient()

	var props piv.ApplicationProperties
	if st := c.SelectApplication(h, piv.PIVApplicationID, &props); st != piv.StatusOK {
	    return fmt.Errorf("select: %s", st)
	}

	obj := dataobject.NewCapabilityContainer()
	if st := c.GetData(h, dataobject.OIDCardCapabilityContainer, obj); st == piv.StatusOK {
	    _ = obj.Decode()
	}
*/
package piv
