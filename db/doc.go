// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection and schema creation.

Open selects the driver from the configuration: modernc.org/sqlite (the
default, with WAL, busy_timeout and foreign_keys pragmas) or lib/pq for
PostgreSQL. CreateSchema creates all tables idempotently at boot.

The schema sticks to the portable subset both drivers accept: TEXT,
INTEGER and TIMESTAMP columns, $1 positional placeholders, booleans as
INTEGER 0/1, and timestamps always supplied by the application. The one
active round per room invariant is a partial unique index, supported by
both engines.

Foreign keys from secret/submission/guess to player cascade on delete,
so a player leaving mid-round automatically falls out of every remaining
round computation.
*/
package db
