/*
Package janitor implements the Janitor program which runs on the ledger.

Janitor closes empty token accounts of a user in batches. Rent of the closed
accounts is collected into the program vault and then split: the service fee
goes to the treasury, the rest is paid out to the user. The vault holds no
lamports of its own between calls beyond its initial balance.

# Instructions

Instruction data is a tag byte followed by the tag-specific payload.

	BatchClean:
	  - name: tag
	    type: u8 (0)
	  - name: count
	    type: u8

Accounts of BatchClean are positional:

	0. user           signer, writable
	1. vault          writable, derived from the "zera-vault" seed
	2. treasury       writable
	3. token program  read-only
	4. account 1      writable, empty token account owned by the user
	   ...
	3+count. account count

# Errors

Program errors are returned as custom error codes.

	0 InvalidVaultPda  vault account is not the derived vault address
	1 MissingSigner    user did not sign the transaction
	2 NonZeroBalance   an account to close still holds tokens
	3 Overflow         lamport arithmetic overflowed

# Program logs

Every successful BatchClean logs the collected rent, the fee and payout split
and the number of closed accounts.
*/
package janitor
