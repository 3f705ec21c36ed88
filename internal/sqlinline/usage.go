package sqlinline

const QInsertTTSUsage = `--sql 3f8a1c9e-52d4-4b6f-9a01-7e2c8d54b1a0
insert into tts_usage (id, user_id, text_length, created_at)
values ($1::uuid, $2::text, $3::int, $4::timestamptz);
`

const QCountTTSUsageSince = `--sql b71e0d42-6c3a-4f58-8b92-145af6e09c3d
select count(*)
from tts_usage
where user_id = $1::text
  and created_at >= $2::timestamptz;
`

const QTTSStatsSummary = `--sql 9d54c7f1-0ab8-4e23-b6d9-3c81e2a75f06
select
    count(*) as total_actions,
    count(*) filter (where created_at >= now() - interval '24 hours') as actions_last_24h,
    count(distinct user_id) as distinct_users
from tts_usage;
`
