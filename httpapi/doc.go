// Package httpapi exposes the campusauth Engine over HTTP.
//
// Routes:
//
//	POST /auth/register  JSON body or multipart form with an optional "avatar" file
//	POST /auth/login     JSON {"email": "...", "password": "..."}
//	POST /auth/refresh   reads the refresh cookie
//	POST /auth/logout    always 401, clears the refresh cookie
//	GET  /auth/me        bearer access token, echoes the token payload
//
// Successful register, login and refresh calls answer {"accessToken": "..."}
// and set the refresh cookie. Field errors answer 400 with
// {"errors": {"<field>": "<message>"}}.
package httpapi
