package mysql

const getValueSQL = `
SELECT v FROM session_kv WHERE session_id = ? AND k = ?
`

// Last write wins; there is no version check.
const upsertValueSQL = `
INSERT INTO session_kv (session_id, k, v)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  v          = VALUES(v),
  updated_at = CURRENT_TIMESTAMP
`

const deleteValueSQL = `
DELETE FROM session_kv WHERE session_id = ? AND k = ?
`

// Removes every key of sessions whose newest write is older than ? microseconds.
// The cutoff uses the server clock, same as updated_at.
const purgeIdleSQL = `
DELETE kv FROM session_kv kv
JOIN (
  SELECT session_id FROM session_kv
  GROUP BY session_id
  HAVING MAX(updated_at) < CURRENT_TIMESTAMP(3) - INTERVAL ? MICROSECOND
) idle ON idle.session_id = kv.session_id
`

const insertMissSQL = `
INSERT INTO warm_misses (hotel_id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  http_status = VALUES(http_status),
  reason      = VALUES(reason),
  seen_at     = CURRENT_TIMESTAMP
`

const listMissesSQL = `
SELECT hotel_id, http_status, reason, seen_at
FROM warm_misses
ORDER BY seen_at DESC, hotel_id
LIMIT ?
`
