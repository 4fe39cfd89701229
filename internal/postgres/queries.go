package postgres

// Tables belong to the booking app: users, doctors, patients,
// doctor_patient_relations, appointments, chat_messages, notifications.

const qGetUser = `
	SELECT id::text, name, role::text
	FROM users
	WHERE id = $1`

const qGetRelation = `
	SELECT r.id::text,
	       du.id::text, du.name,
	       pu.id::text, pu.name
	FROM doctor_patient_relations r
	JOIN doctors  d  ON d.id  = r.doctor_id
	JOIN users    du ON du.id = d.user_id
	JOIN patients p  ON p.id  = r.patient_id
	JOIN users    pu ON pu.id = p.user_id
	WHERE r.id = $1`

const qListMessages = `
	SELECT m.id::text, m.relation_id::text, m.sender_id::text,
	       COALESCE(u.name, ''), COALESCE(u.role::text, ''),
	       m.text, m.created_at
	FROM chat_messages m
	LEFT JOIN users u ON u.id = m.sender_id
	WHERE m.relation_id = $1
	ORDER BY m.created_at ASC, m.id ASC
	OFFSET $2
	LIMIT $3`

const qCountMessages = `
	SELECT count(*)
	FROM chat_messages
	WHERE relation_id = $1`

const qCreateMessage = `
	WITH ins AS (
		INSERT INTO chat_messages (relation_id, sender_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, relation_id, sender_id, text, created_at
	)
	SELECT ins.id::text, ins.relation_id::text, ins.sender_id::text,
	       COALESCE(u.name, ''), COALESCE(u.role::text, ''),
	       ins.text, ins.created_at
	FROM ins
	LEFT JOIN users u ON u.id = ins.sender_id`

const qCreateNotification = `
	INSERT INTO notifications (user_id, message, is_read, status)
	VALUES ($1, $2, false, 'UNREAD')
	RETURNING id::text, user_id::text, message, is_read, status, created_at`

const qGetAppointment = `
	SELECT a.id::text,
	       d.id::text, du.id::text, du.name,
	       p.id::text, pu.id::text, pu.name,
	       to_char(a.date, 'YYYY-MM-DD'), a.time::text, a.status::text, COALESCE(a.reason, '')
	FROM appointments a
	JOIN doctors  d  ON d.id  = a.doctor_id
	JOIN users    du ON du.id = d.user_id
	JOIN patients p  ON p.id  = a.patient_id
	JOIN users    pu ON pu.id = p.user_id
	WHERE a.id = $1`
