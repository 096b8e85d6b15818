// Package http exposes the availability store over a JSON API.
//
// The router exposes the following endpoints:
//   - GET /config: the widget configuration as {"config": ConfigDTO|null}.
//     PUT /admin/config saves it.
//   - GET /profiles: public profiles. GET /profiles/{slug}: one profile by slug;
//     private profiles are reported as not found. GET /admin/profiles lists every
//     profile, POST /admin/profiles upserts one (no id creates), and
//     DELETE /admin/profiles/{id} removes a profile together with its slots.
//   - GET /profiles/{id}/slots: visible slots of a public profile.
//     GET /admin/profiles/{id}/slots includes hidden ones. POST /admin/slots
//     upserts a slot and DELETE /admin/slots/{id} removes it.
//   - POST /slot-requests: public join request submission, guarded by the
//     configured rate limiter. GET /admin/slot-requests?profile_id=&status=
//     lists requests newest first; POST /admin/slot-requests/{id}/review sets
//     approved or rejected; PUT /admin/slot-requests/{id} corrects the contact
//     fields; DELETE /admin/slot-requests/{id} removes a request.
//   - POST /admin/sessions: exchanges {"password"} for a session token, also
//     surfaced via the `X-Session-Token` header and a `session_token` cookie.
//     GET /admin/sessions/current answers the restore check and
//     DELETE /admin/sessions/current logs out. POST /admin/password changes the
//     admin password.
//   - GET /healthz and GET /readyz (database ping).
//
// Admin routes accept `Authorization: Bearer <token>` or the session cookie.
// Wire DTOs live in dto.go and are shared with the widget store client.
package http
