/*
Package resilience guards calls to the game-client bridge with a circuit breaker.

While the bridge keeps failing, layout events are rejected locally with
ErrCircuitOpen instead of piling up retries. After the cooldown a limited number
of probe calls decide whether to close the breaker again.

	Closed --[failures]-> Open --[cooldown]-> Half-Open --[probes ok]-> Closed
	                                              |
	                                          [failure]
	                                              v
	                                             Open
*/
package resilience
