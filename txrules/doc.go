// Copyright (c) 2015-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txrules holds the policy values used when building data-carrying
transactions: the value given to hash160 data outputs, the flat transaction
fee, and the batch width of the UTXO splitter.

There are no package level knobs. Callers build a Config, usually starting
from DefaultConfig, and pass it down to the transaction store.

Wire Limits

MaxNulldataSize and MaxBlobSize are part of the data encoding itself rather
than relay policy, so they are constants and not Config fields.
*/
package txrules
