package postgres

// schema is applied on startup. Tables are ordered so that foreign keys
// always point at a table created earlier.
//
// acknowledgement_actions.acknowledgement_id has no foreign key so audit rows
// survive reconciliation deleting the acknowledgement.
const schema = `
CREATE TABLE IF NOT EXISTS tabs (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    owner_user_id INTEGER NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'ACTIVE' CHECK (status IN ('ACTIVE', 'CLOSED')),
    closed_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS participants (
    id SERIAL PRIMARY KEY,
    tab_id INTEGER NOT NULL REFERENCES tabs(id) ON DELETE CASCADE,
    display_name VARCHAR(100) NOT NULL,
    user_id INTEGER,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT participants_tab_name_key UNIQUE (tab_id, display_name),
    CONSTRAINT participants_tab_user_key UNIQUE (tab_id, user_id)
);

CREATE TABLE IF NOT EXISTS expenses (
    id SERIAL PRIMARY KEY,
    tab_id INTEGER NOT NULL REFERENCES tabs(id) ON DELETE CASCADE,
    payer_participant_id INTEGER NOT NULL REFERENCES participants(id),
    amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
    expense_date DATE NOT NULL,
    note TEXT,
    created_by_user_id INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS expense_splits (
    expense_id INTEGER NOT NULL REFERENCES expenses(id) ON DELETE CASCADE,
    participant_id INTEGER NOT NULL REFERENCES participants(id),
    amount_cents BIGINT NOT NULL CHECK (amount_cents >= 0),
    CONSTRAINT expense_splits_pkey PRIMARY KEY (expense_id, participant_id)
);

CREATE TABLE IF NOT EXISTS acknowledgements (
    id SERIAL PRIMARY KEY,
    tab_id INTEGER NOT NULL REFERENCES tabs(id) ON DELETE CASCADE,
    from_participant_id INTEGER NOT NULL REFERENCES participants(id),
    to_participant_id INTEGER NOT NULL REFERENCES participants(id),
    amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
    status VARCHAR(30) NOT NULL CHECK (status IN ('AWAITING_CONFIRMATION', 'ACKNOWLEDGED')),
    marked_paid_at TIMESTAMPTZ,
    marked_paid_by_user_id INTEGER,
    confirmed_at TIMESTAMPTZ,
    confirmed_by_user_id INTEGER,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT acknowledgements_pair_key UNIQUE (tab_id, from_participant_id, to_participant_id)
);

CREATE TABLE IF NOT EXISTS acknowledgement_actions (
    id SERIAL PRIMARY KEY,
    acknowledgement_id INTEGER NOT NULL,
    tab_id INTEGER NOT NULL REFERENCES tabs(id) ON DELETE CASCADE,
    actor_user_id INTEGER,
    action_type VARCHAR(30) NOT NULL,
    amount_cents BIGINT NOT NULL,
    notes TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS notifications (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL,
    tab_id INTEGER REFERENCES tabs(id) ON DELETE CASCADE,
    title VARCHAR(255) NOT NULL,
    message TEXT NOT NULL,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    attributes JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_tabs_owner ON tabs(owner_user_id);
CREATE INDEX IF NOT EXISTS idx_tabs_status ON tabs(status);
CREATE INDEX IF NOT EXISTS idx_participants_user ON participants(user_id);
CREATE INDEX IF NOT EXISTS idx_expenses_tab ON expenses(tab_id);
CREATE INDEX IF NOT EXISTS idx_acknowledgements_awaiting ON acknowledgements(status, marked_paid_at);
CREATE INDEX IF NOT EXISTS idx_acknowledgement_actions_tab ON acknowledgement_actions(tab_id);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);
`
