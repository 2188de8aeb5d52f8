/*
Engine drives one trading account against one market data venue and one
execution venue.

# Module
  - event loop: single goroutine that owns the ledger, the risk gate and the router
  - ledger: order and position book of the session (internal/oms)
  - risk gate: pre-trade checks and post-event guards (internal/risk)
  - router: symbol and order ref routing to strategies (internal/router)
  - algos: execution algorithms addressed by symbol (internal/algo)

# Source
 1. venue callbacks pushed through the event queue
 2. algo requests from strategies or operators
 3. session control from the caller goroutine (start, stop, reconnect)

# Produce
  - order inserts and cancels to the trade adapter
  - subscriptions to the market adapter
  - log, order, trade, position and risk rows to the store sink
*/
package engine
