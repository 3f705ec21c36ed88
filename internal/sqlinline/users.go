package sqlinline

const QSelectUserTier = `--sql 5b2d9e70-83f4-4a1c-9d67-0fe4c12ab853
select plan
from users
where user_id = $1::text
limit 1;
`

const QSelectUserByID = `--sql e4a6f028-1d95-47cb-ae30-62b8d19c54f7
select user_id, email, plan, created_at, updated_at
from users
where user_id = $1::text
limit 1;
`

const QUpdateUserTier = `--sql 27c315da-9f60-4b84-bd12-8a05e7f3c96b
update users
set plan = $2::text,
    updated_at = now()
where user_id = $1::text
returning user_id, email, plan, created_at, updated_at;
`
